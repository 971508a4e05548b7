package interp

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical encoding so reports for the same error are
// byte-identical wherever they are produced.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("interp: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ErrorReport is the serialized form of a guest error, for embedders that
// persist or ship crash data.
type ErrorReport struct {
	Class   string `cbor:"class"`
	Message string `cbor:"message"`
	File    string `cbor:"file"`
	Trace   string `cbor:"trace,omitempty"`
}

// NewErrorReport builds a report from a converted guest error.
func NewErrorReport(err *GuestError) ErrorReport {
	return ErrorReport{
		Class:   err.ClassName,
		Message: err.Message,
		File:    err.File,
		Trace:   err.Trace,
	}
}

// EncodeErrorReport serializes a guest error to canonical CBOR.
func EncodeErrorReport(err *GuestError) ([]byte, error) {
	return cborEncMode.Marshal(NewErrorReport(err))
}

// DecodeErrorReport deserializes a report produced by EncodeErrorReport.
func DecodeErrorReport(data []byte) (ErrorReport, error) {
	var report ErrorReport
	if err := cbor.Unmarshal(data, &report); err != nil {
		return ErrorReport{}, fmt.Errorf("interp: decode error report: %w", err)
	}
	return report, nil
}
