package cli

import (
	"fmt"

	"github.com/roach88/salin/internal/config"
	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/lexicon"
	"github.com/roach88/salin/internal/model"
	"github.com/roach88/salin/internal/tag"
)

// loadConfig loads the config named by --config, or the defaults.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// loadModel opens all three tables named by the config.
func loadModel(opts *RootOptions) (*model.Model, *config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	m, err := model.Open(cfg, opts.logger())
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load tables", err)
	}
	return m, cfg, nil
}

// parseTable maps a --table value to a lexicon kind.
func parseTable(name string) (lexicon.Kind, error) {
	switch lexicon.Kind(name) {
	case lexicon.Dictionary, lexicon.Actions:
		return lexicon.Kind(name), nil
	default:
		return "", NewExitError(ExitCommandError,
			fmt.Sprintf("invalid table %q: must be %s or %s", name, lexicon.Dictionary, lexicon.Actions))
	}
}

// parseTags parses command-line tag arguments.
func parseTags(args []string) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0, len(args))
	for _, a := range args {
		t, err := tag.Parse(a)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid tag", err)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// tagNames renders tags by name.
func tagNames(tags []tag.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return names
}

// bindingsFor returns every grammar binding of index, in table order.
func bindingsFor(m *model.Model, index ir.Key) []ir.RuleBinding {
	out := []ir.RuleBinding{}
	for _, b := range m.Grammar.Bindings() {
		if b.Index == index {
			out = append(out, b)
		}
	}
	return out
}
