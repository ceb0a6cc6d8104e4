// Package schema generates JSON schemas for the configuration file and the analysis summary.
package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/models"
)

// GenSummarySchema writes the JSON schema of ai-summary.json.
func GenSummarySchema(out io.Writer) error {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	s := reflector.Reflect(&models.AnalysisSummary{})
	s.Title = "SmartRepo analysis summary"
	return write(out, s)
}

// GenConfigSchema writes the JSON schema of the application configuration.
func GenConfigSchema(out io.Writer) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "mapstructure",
	}
	s := reflector.Reflect(&configs.Config{})
	s.Title = "SmartRepo configuration"
	return write(out, s)
}

func write(out io.Writer, s *jsonschema.Schema) error {
	schemaJSON, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(schemaJSON))
	return err
}
