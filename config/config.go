package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sync"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

var Main *File

func init() {
	Main = NewConfigFileWithDir(mustGetConfigHomeDir(), MainFileFullName)
}

const (
	MainDir          = ".billpipe"
	MainFileFullName = "config.yaml"
)

// FileNotFoundError denotes failing to find a configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a simple YAML-backed key-value store.
// Values may be plain strings or nested sections decoded into structs via mapstructure.
type File struct {
	Dirname      string
	FileName     string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, fileName string) *File {
	c := &File{Dirname: dirName, FileName: fileName}
	c.FullPath = path.Join(dirName, fileName)
	c.data = make(map[string]interface{})
	return c
}

// Get will fetch the key from the config File into variable out, which must be a pointer.
// Nested config sections are decoded with mapstructure so out may be a struct pointer.
// Return a KeyNotFoundError if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	d, ok := c.data[key]
	if !ok { // if the key was not found...
		return KeyNotFoundError{c.FullPath, key}
	}
	return mapstructure.Decode(d, out)
}

// Set will write the key and value to the config File, creating the file if required.
func (c *File) Set(key string, val interface{}) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.data[key] = val
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data while writing key %v to config file %v: %v", key, c.FullPath, err)
	}
	if err := MakeDir(c.Dirname); err != nil {
		return err
	}
	return ioutil.WriteFile(c.FullPath, b, 0600)
}

// Delete removes the key from the config File.
func (c *File) Delete(key string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{c.FullPath, key}
	}
	delete(c.data, key)
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data while deleting key %v from config file %v: %v", key, c.FullPath, err)
	}
	return ioutil.WriteFile(c.FullPath, b, 0600)
}

func (c *File) GetAllKeys() ([]string, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	return retval, nil
}

// ensureLoaded loads the file contents once.
// A missing file is not an error since keys may be written later.
func (c *File) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataIsLoaded { // if we have loaded the data already...
		return nil
	}
	b, err := ioutil.ReadFile(c.FullPath)
	if err != nil {
		if os.IsNotExist(err) { // if the file doesn't exist yet...
			c.dataIsLoaded = true
			return nil
		}
		return err
	}
	if err = yaml.Unmarshal(b, &c.data); err != nil {
		return err
	}
	if c.data == nil { // if the file was empty...
		c.data = make(map[string]interface{})
	}
	c.dataIsLoaded = true
	return nil
}
