package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/billpipe/config"
	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"bucket": cliFlag{name: "bucket", shortHand: "b",
		desc: "GCS bucket name holding the transferred billing exports"},
	"prefix": cliFlag{name: "prefix", shortHand: "p",
		desc: "Object prefix under which export manifests are discovered"},
	"export-name": cliFlag{name: "export-name", shortHand: "e",
		desc: "Azure export name; manifests live under <prefix>/<export-name>/"},
	"table-name": cliFlag{name: "table-name", shortHand: "t",
		desc: "Warehouse table to load billing data into. Tracking rows go to \n" +
			"<table-name>" + constants.TrackingTableSuffix + " and run summaries to <table-name>" + constants.SummaryTableSuffix},
	"project-id": cliFlag{name: "project-id", shortHand: "j",
		desc: "Warehouse project id"},
	"dataset": cliFlag{name: "dataset", shortHand: "d",
		desc: "Warehouse dataset containing the billing tables"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"yaml\" or \"json\" to print discovered manifests in machine-readable form"},
	"store": cliFlag{name: "store", shortHand: "s",
		desc: "Object store to discover manifests in: \"" + constants.StoreTypeGCS + "\" or \"" + constants.StoreTypeS3 + "\""},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region, used when the store is \"" + constants.StoreTypeS3 + "\""},
	"port": cliFlag{name: "port", shortHand: "P",
		desc: "Port to listen on"},
}

// addFlag adds a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of the environment variable
// for the supplied name (scoped by section when one is given), or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from the named config file section if it
// exists else the supplied defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, section string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, section, defaultValue) // get the cliFlag details, with defaults taken from env, config or the supplied defaultValue
	desc := sw.desc + desc2                         // create the full flag description for use below
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		if twelveFactorMode {
			// Convert any string value into True.
			*p = sw.val != ""
		} else {
			defaultBool := strings.ToLower(sw.val) == "true"
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
			if defaultBool {
				mustSetFlag(c.Flags(), sw.name, "true")
			}
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file section to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, section string, defaultValue string) cliFlag {
	s, ok := switches[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(section, name), &s.val); err != nil { // if there's no value for the env var read into the switch val...
			// Apply the default.
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		err := getConfigValue(section, name, &s.val)
		if errors.As(err, &config.KeyNotFoundError{}) || s.val == "" { // if there was no key found...
			// Apply the default.
			s.val = defaultValue
		}
	}
	return s
}

// getConfigValue fetches the config value for a flag from the named section
// of the main config file, e.g. flag "table-name" in section "aws" is config
// key aws.tableName.
func getConfigValue(section string, flagName string, out *string) error {
	if section == "" {
		return config.Main.Get(flagName, out)
	}
	var m map[string]interface{}
	if err := config.Main.Get(section, &m); err != nil {
		return err
	}
	v, ok := m[flagNameToConfigKey(flagName)]
	if !ok {
		return config.KeyNotFoundError{}
	}
	*out = fmt.Sprintf("%v", v)
	return nil
}

// flagNameToConfigKey converts a flag name to its lowerCamel config key,
// e.g. "export-name" becomes "exportName".
func flagNameToConfigKey(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.Title(parts[i])
	}
	return strings.Join(parts, "")
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix,
// scoped by the config section when one is given, e.g. BP_AWS_TABLE_NAME.
func flagNameToEnvVar(section string, name string) string {
	if section != "" {
		return constants.EnvVarPrefix + "_" + strings.ToUpper(section) + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	}
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
