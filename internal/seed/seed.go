// Package seed loads initial state trees from JSON, YAML or CUE files.
//
// JSON is parsed directly. YAML is decoded with yaml.v3 and converted with
// tree.FromGo, so an integral YAML float such as 1.0 becomes an Int. CUE
// files are compiled and must evaluate to concrete data; the CUE value is
// exported as JSON and parsed, so CUE constraints and defaults are resolved
// before the tree is built.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/statetree/internal/tree"
)

// Format names a seed file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// Error codes.
const (
	ErrCodeUnknownFormat = "UNKNOWN_FORMAT"
	ErrCodeRead          = "READ_FAILED"
	ErrCodeDecode        = "DECODE_FAILED"
	ErrCodeNotConcrete   = "NOT_CONCRETE"
)

// Error reports a seed that could not be loaded.
type Error struct {
	Code    string
	File    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FormatOf picks a format from a file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", &Error{
		Code:    ErrCodeUnknownFormat,
		File:    name,
		Message: fmt.Sprintf("unsupported extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(name)),
	}
}

// Load reads a state tree from file, choosing the decoder by extension.
func Load(file string) (tree.Value, error) {
	format, err := FormatOf(file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &Error{Code: ErrCodeRead, File: file, Message: err.Error(), Err: err}
	}
	return Decode(file, format, data)
}

// Decode builds a state tree from data in the given format. name is used
// in error messages and CUE positions.
func Decode(name string, format Format, data []byte) (tree.Value, error) {
	switch format {
	case FormatJSON:
		v, err := tree.Parse(data)
		if err != nil {
			return nil, &Error{Code: ErrCodeDecode, File: name, Message: err.Error(), Err: err}
		}
		return v, nil
	case FormatYAML:
		return decodeYAML(name, data)
	case FormatCUE:
		return decodeCUE(name, data)
	}
	return nil, &Error{Code: ErrCodeUnknownFormat, File: name, Message: fmt.Sprintf("unknown format %q", format)}
}

func decodeYAML(name string, data []byte) (tree.Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Code: ErrCodeDecode, File: name, Message: err.Error(), Err: err}
	}
	v, err := tree.FromGo(raw)
	if err != nil {
		return nil, &Error{Code: ErrCodeDecode, File: name, Message: err.Error(), Err: err}
	}
	return v, nil
}

func decodeCUE(name string, data []byte) (tree.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, cueError(name, ErrCodeDecode, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(name, ErrCodeNotConcrete, err)
	}

	exported, err := v.MarshalJSON()
	if err != nil {
		return nil, cueError(name, ErrCodeNotConcrete, err)
	}
	out, err := tree.Parse(exported)
	if err != nil {
		return nil, &Error{Code: ErrCodeDecode, File: name, Message: err.Error(), Err: err}
	}
	return out, nil
}

// cueError keeps the first CUE error and its position.
func cueError(name, code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Code: code, File: name, Message: err.Error(), Err: err}
	}
	first := errs[0]
	out := &Error{Code: code, File: name, Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}
