package cmd

import (
	"fmt"
	"os"
	"strings"

	c "github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/helper"
	"github.com/relloyd/billpipe/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain the equivalent of
// the CLI flag values used by the pipelines.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
	}
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarPipeline         = c.EnvVarPrefix + "_" + "PIPELINE" // aws|azure|all
	envVarLogLevel         = c.EnvVarPrefix + "_" + "LOG_LEVEL"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is set to "lambda"
)

// twelveFactorActions maps "<command>-<pipeline>" to a runner.
// The runner funcs are shared with the Cobra commands so both entry points
// execute identical code paths.
var twelveFactorActions = map[string]func() error{
	"load-" + c.PipelineAWS:   runLoadAWS,
	"load-" + c.PipelineAzure: runLoadAzure,
	"load-" + c.PipelineAll:   runLoadAll,
	"serve-":                  runServe,
}

func execute12FactorMode(acts map[string]func() error) error {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn")
	log := logger.NewLogger("billpipe", logLevel, stackDumpOnPanic)
	log.Info("Billpipe is running in 12 Factor mode...")
	command := os.Getenv(envVarCommand)
	pipelineName := os.Getenv(envVarPipeline)
	log.Debug(envVarCommand, "=", command)
	log.Debug(envVarPipeline, "=", pipelineName)
	action := fmt.Sprintf("%v-%v", command, pipelineName)
	fn, ok := acts[action]
	if !ok {
		err := fmt.Errorf("invalid combination of command (%v) and pipeline (%v)", command, pipelineName)
		log.Error(err.Error())
		return err
	}
	if err := fn(); err != nil {
		log.Error("Error: ", err)
		return err
	}
	return nil
}
