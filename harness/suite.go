package harness

import (
	"fmt"
	"io/ioutil"

	"github.com/pelletier/go-toml"
)

// TestCase is one verification case: the command-line arguments to pass and,
// optionally, the output the author expects.  Both are strings; the drivers
// and the oracle parse them by the resolved parameter types.
type TestCase struct {
	Args []string `toml:"args"`
	Want string   `toml:"want"`
}

// suiteFile is the TOML shape of a test-suite file: a sequence of
// `[[case]]` tables.
type suiteFile struct {
	Cases []TestCase `toml:"case"`
}

// LoadSuite reads an ordered list of test cases from the TOML file at path.
func LoadSuite(path string) ([]TestCase, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read test suite at `%s`: %s", path, err.Error())
	}

	sf := &suiteFile{}
	if err := toml.Unmarshal(buff, sf); err != nil {
		return nil, fmt.Errorf("error parsing test suite at `%s`: %s", path, err.Error())
	}

	if len(sf.Cases) == 0 {
		return nil, fmt.Errorf("test suite at `%s` contains no cases", path)
	}

	return sf.Cases, nil
}
