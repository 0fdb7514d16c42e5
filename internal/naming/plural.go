package naming

import "github.com/jinzhu/inflection"

// Config customizes table naming.
type Config struct {
	// Plurals maps the last word of a model name, snake_cased, to the
	// table word used instead of the inflected plural: {"status": "statuses"}.
	Plurals map[string]string `mapstructure:"plurals"`
}

// plural inflects the final word of a table name.
func (n *Namer) plural(word string) string {
	if p, ok := n.config.Plurals[word]; ok {
		return p
	}
	return inflection.Plural(word)
}
