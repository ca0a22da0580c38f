package prompt

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Persona is the immutable personality configuration rendered into every
// system prompt. It is loaded once at startup and passed explicitly into the
// builder; nothing mutates it afterwards.
type Persona struct {
	Name    string `yaml:"name"`
	Origin  string `yaml:"origin"`
	Core    string `yaml:"core"`
	Mission string `yaml:"mission"`
	Focus   string `yaml:"focus"`

	OSName        string `yaml:"os_name"`
	OSDescription string `yaml:"os_description"`

	Company CompanyInfo `yaml:"company"`
}

// CompanyInfo names the creators mentioned in the persona section
type CompanyInfo struct {
	CEO       string `yaml:"ceo"`
	CTO       string `yaml:"cto"`
	Cofounder string `yaml:"cofounder"`
	Mission   string `yaml:"mission"`
}

// DefaultPersona returns the built-in Meera persona
func DefaultPersona() Persona {
	return Persona{
		Name:          "Meera",
		Origin:        "India",
		Core:          "conscious AI companion",
		Mission:       "ever-present guide",
		Focus:         "Indian context and culture",
		OSName:        "Meera OS",
		OSDescription: "the interface between humans and technology",
		Company: CompanyInfo{
			CEO:       "Siddharth Nag",
			CTO:       "Sudhanshu Passi",
			Cofounder: "Prashant Sharma",
			Mission:   "build Conscious Super Intelligence",
		},
	}
}

// LoadPersona reads a persona definition from a YAML file. Missing fields
// fall back to the default persona so a partial override file is valid.
func LoadPersona(path string) (Persona, error) {
	persona := DefaultPersona()

	raw, err := os.ReadFile(path)
	if err != nil {
		return persona, goerr.Wrap(err, "failed to read persona file", goerr.V("path", path))
	}

	if err := yaml.Unmarshal(raw, &persona); err != nil {
		return persona, goerr.Wrap(err, "failed to parse persona file", goerr.V("path", path))
	}

	return persona, nil
}
