package model

import "errors"

// ErrModelNotLoaded is returned when prediction is attempted without a model.
// Its text is surfaced verbatim in the 500 details.
var ErrModelNotLoaded = errors.New("Model not loaded") //nolint:stylecheck // ST1005: wording is part of the API

// Labels maps output indices to class names.
var Labels = map[int]string{
	0: "Benign",
	1: "Malignant",
}

// UnknownLabel is reported for indices missing from Labels.
const UnknownLabel = "Unknown"

// Metadata describes the tensors of a loaded artifact.
type Metadata struct {
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
}

// InputSize returns the element count of the input tensor.
func (m Metadata) InputSize() int64 {
	return m.size(m.InputShape)
}

// OutputSize returns the element count of the output tensor.
func (m Metadata) OutputSize() int64 {
	return m.size(m.OutputShape)
}

func (m Metadata) size(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

type Prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}
