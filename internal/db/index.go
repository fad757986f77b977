package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

// Distance metrics accepted by FT.CREATE.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects how a vector field is indexed.
type VectorAlgorithm string

// Vector index algorithms.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// FieldKind is the FT schema type of an indexed hash field.
type FieldKind int

// Field kinds.
const (
	FieldNumeric FieldKind = iota + 1
	FieldText
	FieldVector
)

func (k FieldKind) keyword() (string, bool) {
	switch k {
	case FieldNumeric:
		return "NUMERIC", true
	case FieldText:
		return "TEXT", true
	case FieldVector:
		return "VECTOR", true
	default:
		return "", false
	}
}

// VectorParams configures a FLOAT32 vector field. Zero values fall back to
// HNSW, cosine distance and the server's graph defaults.
type VectorParams struct {
	Algorithm VectorAlgorithm
	Dim       int
	Distance  DistanceMetric
	// M and EFConstruction tune HNSW graphs.
	M              int
	EFConstruction int
	// BlockSize applies to FLAT only.
	BlockSize int
}

func (p *VectorParams) args() []string {
	algo := p.Algorithm
	if algo == "" {
		algo = VectorHNSW
	}
	distance := p.Distance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(p.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	switch algo {
	case VectorHNSW:
		attrs = appendPositive(attrs, "M", p.M)
		attrs = appendPositive(attrs, "EF_CONSTRUCTION", p.EFConstruction)
	case VectorFlat:
		attrs = appendPositive(attrs, "BLOCK_SIZE", p.BlockSize)
	}

	// VECTOR <algo> <nargs> <attrs...>
	return append([]string{string(algo), strconv.Itoa(len(attrs))}, attrs...)
}

func appendPositive(attrs []string, name string, v int) []string {
	if v <= 0 {
		return attrs
	}
	return append(attrs, name, strconv.Itoa(v))
}

// IndexField is one hash field in an FT schema. Vector fields are queried by Alias.
type IndexField struct {
	Name   string
	Alias  string
	Kind   FieldKind
	Vector *VectorParams
}

// key is the name queries use to address the field.
func (f *IndexField) key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func (f *IndexField) validate() error {
	if f.Name == "" {
		return errors.New("field name is required")
	}
	if _, ok := f.Kind.keyword(); !ok {
		return fmt.Errorf("field %s: unknown kind %d", f.Name, f.Kind)
	}
	if f.Kind == FieldVector && (f.Vector == nil || f.Vector.Dim <= 0) {
		return fmt.Errorf("field %s: vector DIM must be positive", f.Name)
	}
	return nil
}

// IndexDefinition describes an FT index over the hashes under Prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	// LanguageField names the hash field holding each document's stemming language.
	LanguageField string
	// NoStopwords renders STOPWORDS 0 so documents without a language keep every term.
	NoStopwords bool
	Fields      []IndexField
}

// HasText reports whether the schema contains a TEXT field.
func (idx *IndexDefinition) HasText() bool {
	for i := range idx.Fields {
		if idx.Fields[i].Kind == FieldText {
			return true
		}
	}
	return false
}

// WithoutText returns a copy with TEXT fields and text options removed,
// for servers whose search module indexes vectors and numerics only.
// idx itself is returned when there is nothing to strip.
func (idx *IndexDefinition) WithoutText() *IndexDefinition {
	if !idx.HasText() && idx.LanguageField == "" && !idx.NoStopwords {
		return idx
	}
	out := *idx
	out.LanguageField = ""
	out.NoStopwords = false
	out.Fields = make([]IndexField, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		if f.Kind != FieldText {
			out.Fields = append(out.Fields, f)
		}
	}
	return &out
}

// Validate checks that the definition can be rendered into FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	if !validIndexName(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if err := f.validate(); err != nil {
			return err
		}
		if _, dup := seen[f.key()]; dup {
			return fmt.Errorf("duplicate field name %s", f.key())
		}
		seen[f.key()] = struct{}{}
	}
	return nil
}

// Args renders the FT.CREATE arguments that follow the command name.
func (idx *IndexDefinition) Args() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	if idx.LanguageField != "" {
		args = append(args, "LANGUAGE_FIELD", idx.LanguageField)
	}
	if idx.NoStopwords {
		args = append(args, "STOPWORDS", "0")
	}

	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		args = append(args, f.Name)
		if f.Alias != "" {
			args = append(args, "AS", f.Alias)
		}
		kw, _ := f.Kind.keyword()
		args = append(args, kw)
		if f.Kind == FieldVector {
			args = append(args, f.Vector.args()...)
		}
	}
	return args, nil
}

// String renders the full FT.CREATE command for logs and tests.
func (idx *IndexDefinition) String() string {
	args, err := idx.Args()
	if err != nil {
		return "FT.CREATE <invalid: " + err.Error() + ">"
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

// validIndexName matches [a-zA-Z0-9_:-]+.
func validIndexName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}
