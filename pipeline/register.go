package pipeline

import (
	"sort"

	"github.com/relloyd/billpipe/constants"
	"github.com/relloyd/billpipe/logger"
)

// Pipeline pairs a runnable ingestion pipeline with its description.
type Pipeline struct {
	Description string
	Run         func(cfg *Config) error
}

// Registry holds all supported pipelines keyed by the name used on the CLI
// and the web trigger.
var Registry = map[string]Pipeline{
	constants.PipelineAWS: {
		Description: "AWS Cost and Usage Report exports",
		Run:         RunAWS,
	},
	constants.PipelineAzure: {
		Description: "Azure FOCUS billing exports",
		Run:         RunAzure,
	},
}

// Names returns the registered pipeline names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named pipeline.
func Run(name string, cfg *Config) error {
	p, ok := Registry[name]
	if !ok {
		return &UnknownPipelineError{Name: name, Available: Names()}
	}
	return p.Run(cfg)
}

// RunAll executes every registered pipeline, continuing past failures so one
// provider's bad manifest cannot block the other provider's loads.
func RunAll(log logger.Logger, cfgs map[string]*Config) error {
	failures := map[string]error{}
	for _, name := range Names() {
		cfg, ok := cfgs[name]
		if !ok { // if no config section exists for this pipeline...
			log.Info("no configuration for pipeline ", name, ", skipping")
			continue
		}
		log.Info("running pipeline ", name)
		if err := Registry[name].Run(cfg); err != nil {
			log.Error("pipeline ", name, " failed: ", err)
			failures[name] = err
		}
	}
	if len(failures) > 0 {
		return &PartialRunFailure{Total: len(Registry), Failures: failures}
	}
	return nil
}
