package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/billpipe/constants"
)

var billPipeHomeDir string

// mustGetConfigHomeDir returns the full path to the home directory that stores all config and state files.
// The BP_HOME environment variable overrides the default of ~/.billpipe.
// Uses global variable.
func mustGetConfigHomeDir() string {
	if billPipeHomeDir == "" {
		if dir := os.Getenv(constants.EnvVarPrefix + "_HOME"); dir != "" { // if the user supplied a home dir...
			billPipeHomeDir = dir
			return billPipeHomeDir
		}
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		billPipeHomeDir = path.Join(home, MainDir)
	}
	return billPipeHomeDir
}

// HomeDir returns the billpipe home directory, e.g. ~/.billpipe.
func HomeDir() string {
	return mustGetConfigHomeDir()
}

// MakeDir will make the given directory if it does not already exist.
// If it exists then return nil.
// An error is returned if there is a problem creating the dir.
func MakeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0755); err != nil { // if the dir was NOT created...
			return fmt.Errorf("error creating directory %v", dir)
		}
	} else if err != nil { // if there was an error getting status...
		return err
	}
	return nil
}
