package eventmodels

import (
	"fmt"
	"strings"
)

type OptionType string

func (o OptionType) Validate() error {
	if o != OptionTypeCall && o != OptionTypePut {
		return fmt.Errorf("OptionType: Validate: invalid option type: %s", o)
	}

	return nil
}

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

func ParseOptionType(s string) (OptionType, error) {
	o := OptionType(strings.ToLower(strings.TrimSpace(s)))
	if err := o.Validate(); err != nil {
		return "", err
	}

	return o, nil
}
