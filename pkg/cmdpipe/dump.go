package cmdpipe

import "gopkg.in/yaml.v3"

// stageDump/pipelineDump/groupDump are one-way debug projections of the
// construction-time tree — never parsed back in, unlike a config file. They
// exist so CMD_LIB_DEBUG=1 callers (and the CLI/TUI front ends) can print
// "what is about to run" as readable YAML instead of the single-line debug
// string.
type stageDump struct {
	Args      []string          `yaml:"args"`
	Envs      map[string]string `yaml:"envs,omitempty"`
	Redirects []string          `yaml:"redirects,omitempty"`
}

type pipelineDump struct {
	Stages []stageDump `yaml:"stages"`
}

type groupEntryDump struct {
	Primary  pipelineDump  `yaml:"primary"`
	Fallback *pipelineDump `yaml:"fallback,omitempty"`
}

type groupDump struct {
	CurrentDir string           `yaml:"current_dir"`
	Entries    []groupEntryDump `yaml:"entries"`
}

func dumpStage(s *Stage) stageDump {
	d := stageDump{Args: append([]string(nil), s.argv...)}
	if len(s.envs) > 0 {
		d.Envs = s.envs
	}
	for _, r := range s.redirects {
		d.Redirects = append(d.Redirects, r.String())
	}
	return d
}

func dumpPipeline(p *Pipeline) pipelineDump {
	d := pipelineDump{Stages: make([]stageDump, len(p.stages))}
	for i, s := range p.stages {
		d.Stages[i] = dumpStage(s)
	}
	return d
}

// DumpPipeline renders a Pipeline's current construction state as YAML.
func DumpPipeline(p *Pipeline) (string, error) {
	out, err := yaml.Marshal(dumpPipeline(p))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DumpGroup renders a Group's pipelines (including fallbacks) and its
// current working directory as YAML.
func DumpGroup(g *Group) (string, error) {
	g.mu.Lock()
	d := groupDump{CurrentDir: g.currentDir}
	for _, e := range g.entries {
		ged := groupEntryDump{Primary: dumpPipeline(e.primary)}
		if e.fallback != nil {
			fb := dumpPipeline(e.fallback)
			ged.Fallback = &fb
		}
		d.Entries = append(d.Entries, ged)
	}
	g.mu.Unlock()

	out, err := yaml.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
