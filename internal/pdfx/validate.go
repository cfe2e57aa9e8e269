package pdfx

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mfenderov/pdfvault/internal/apperr"
)

var (
	disableConfigDir sync.Once
	validatePDF      = api.Validate
)

// Validate checks that content is a structurally sound PDF.
// It runs pdfcpu in relaxed mode, which tolerates the common producer quirks.
func Validate(content []byte) (err error) {
	disableConfigDir.Do(api.DisableConfigDir)

	defer func() {
		if r := recover(); r != nil {
			err = apperr.Decode(fmt.Errorf("pdfcpu panic: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := validatePDF(bytes.NewReader(content), conf); err != nil {
		return apperr.Decode(err)
	}
	return nil
}
