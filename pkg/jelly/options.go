package jelly

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol versions.
const (
	// ProtoVersion1_0 is the base protocol.
	ProtoVersion1_0 uint32 = 1
	// ProtoVersion1_1 adds namespace declarations.
	ProtoVersion1_1 uint32 = 2
	// ProtoVersion is the highest version this implementation understands.
	ProtoVersion = ProtoVersion1_1
)

// MinNameTableSize is the smallest name table a stream may declare.
const MinNameTableSize = 8

// Ceilings used by DefaultSupportedOptions.
const (
	DefaultMaxNameTableSize     = 4096
	DefaultMaxPrefixTableSize   = 1024
	DefaultMaxDatatypeTableSize = 256
)

// PhysicalStreamType is the statement shape carried by a stream.
type PhysicalStreamType int32

const (
	PhysicalUnspecified PhysicalStreamType = 0
	PhysicalTriples     PhysicalStreamType = 1
	PhysicalQuads       PhysicalStreamType = 2
	PhysicalGraphs      PhysicalStreamType = 3
)

func (t PhysicalStreamType) String() string {
	switch t {
	case PhysicalTriples:
		return "TRIPLES"
	case PhysicalQuads:
		return "QUADS"
	case PhysicalGraphs:
		return "GRAPHS"
	case PhysicalUnspecified:
		return "UNSPECIFIED"
	default:
		return fmt.Sprintf("PhysicalStreamType(%d)", int32(t))
	}
}

// LogicalStreamType classifies a stream at the application level.
// Subtypes share the decimal suffix of their parent: 114 is a subtype of
// 14, which is a subtype of 4.
type LogicalStreamType int32

const (
	LogicalUnspecified            LogicalStreamType = 0
	LogicalFlatTriples            LogicalStreamType = 1
	LogicalFlatQuads              LogicalStreamType = 2
	LogicalGraphs                 LogicalStreamType = 3
	LogicalDatasets               LogicalStreamType = 4
	LogicalSubjectGraphs          LogicalStreamType = 13
	LogicalNamedGraphs            LogicalStreamType = 14
	LogicalTimestampedNamedGraphs LogicalStreamType = 114
)

var logicalNames = map[LogicalStreamType]string{
	LogicalUnspecified:            "UNSPECIFIED",
	LogicalFlatTriples:            "FLAT_TRIPLES",
	LogicalFlatQuads:              "FLAT_QUADS",
	LogicalGraphs:                 "GRAPHS",
	LogicalDatasets:               "DATASETS",
	LogicalSubjectGraphs:          "SUBJECT_GRAPHS",
	LogicalNamedGraphs:            "NAMED_GRAPHS",
	LogicalTimestampedNamedGraphs: "TIMESTAMPED_NAMED_GRAPHS",
}

func (t LogicalStreamType) String() string {
	if name, ok := logicalNames[t]; ok {
		return name
	}
	return fmt.Sprintf("LogicalStreamType(%d)", int32(t))
}

// ParseLogicalStreamType parses a name such as "flat_triples" or "NAMED_GRAPHS".
func ParseLogicalStreamType(s string) (LogicalStreamType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	if want == "" {
		return LogicalUnspecified, nil
	}
	for t, name := range logicalNames {
		if name == want {
			return t, nil
		}
	}
	return LogicalUnspecified, fmt.Errorf("unknown logical stream type: %q", s)
}

// BaseType returns the base (single-digit) type t derives from.
func (t LogicalStreamType) BaseType() LogicalStreamType {
	return t % 10
}

// IsEqualOrSubtypeOf reports whether t is other or one of its subtypes.
func (t LogicalStreamType) IsEqualOrSubtypeOf(other LogicalStreamType) bool {
	if t == other {
		return true
	}
	if other == LogicalUnspecified || t == LogicalUnspecified {
		return false
	}
	return strings.HasSuffix(strconv.Itoa(int(t)), strconv.Itoa(int(other)))
}

// StreamOptions is the options row opening every stream.
type StreamOptions struct {
	StreamName            string
	PhysicalType          PhysicalStreamType
	GeneralizedStatements bool
	RdfStar               bool
	MaxNameTableSize      uint32
	MaxPrefixTableSize    uint32
	MaxDatatypeTableSize  uint32
	LogicalType           LogicalStreamType
	Version               uint32
}

// Clone returns a copy of o.
func (o *StreamOptions) Clone() *StreamOptions {
	c := *o
	return &c
}

// WithPhysicalType returns a copy of o with the physical type set.
func (o *StreamOptions) WithPhysicalType(t PhysicalStreamType) *StreamOptions {
	c := o.Clone()
	c.PhysicalType = t
	return c
}

// WithLogicalType returns a copy of o with the logical type set.
func (o *StreamOptions) WithLogicalType(t LogicalStreamType) *StreamOptions {
	c := o.Clone()
	c.LogicalType = t
	return c
}

// WithStreamName returns a copy of o with the stream name set.
func (o *StreamOptions) WithStreamName(name string) *StreamOptions {
	c := o.Clone()
	c.StreamName = name
	return c
}

func (o *StreamOptions) String() string {
	return fmt.Sprintf("options{v%d %s/%s names=%d prefixes=%d datatypes=%d generalized=%t rdfstar=%t}",
		o.Version, o.PhysicalType, o.LogicalType,
		o.MaxNameTableSize, o.MaxPrefixTableSize, o.MaxDatatypeTableSize,
		o.GeneralizedStatements, o.RdfStar)
}

func preset(names, prefixes, datatypes uint32, generalized, rdfStar bool) *StreamOptions {
	return &StreamOptions{
		GeneralizedStatements: generalized,
		RdfStar:               rdfStar,
		MaxNameTableSize:      names,
		MaxPrefixTableSize:    prefixes,
		MaxDatatypeTableSize:  datatypes,
		Version:               ProtoVersion1_0,
	}
}

// Small presets: 128 names, 16 prefixes, 16 datatypes.
func SmallStrict() *StreamOptions { return preset(128, 16, 16, false, false) }
func SmallGeneralized() *StreamOptions { return preset(128, 16, 16, true, false) }
func SmallRdfStar() *StreamOptions { return preset(128, 16, 16, false, true) }
func SmallAllFeatures() *StreamOptions { return preset(128, 16, 16, true, true) }

// Big presets: 4000 names, 150 prefixes, 32 datatypes.
func BigStrict() *StreamOptions { return preset(4000, 150, 32, false, false) }
func BigGeneralized() *StreamOptions { return preset(4000, 150, 32, true, false) }
func BigRdfStar() *StreamOptions { return preset(4000, 150, 32, false, true) }
func BigAllFeatures() *StreamOptions { return preset(4000, 150, 32, true, true) }

var presets = map[string]func() *StreamOptions{
	"small_strict":       SmallStrict,
	"small_generalized":  SmallGeneralized,
	"small_rdf_star":     SmallRdfStar,
	"small_all_features": SmallAllFeatures,
	"big_strict":         BigStrict,
	"big_generalized":    BigGeneralized,
	"big_rdf_star":       BigRdfStar,
	"big_all_features":   BigAllFeatures,
}

// PresetByName returns a fresh copy of the named preset.
func PresetByName(name string) (*StreamOptions, error) {
	f, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown options preset: %q", name)
	}
	return f(), nil
}

// PresetNames lists the names accepted by PresetByName.
func PresetNames() []string {
	return []string{
		"small_strict", "small_generalized", "small_rdf_star", "small_all_features",
		"big_strict", "big_generalized", "big_rdf_star", "big_all_features",
	}
}

// DefaultSupportedOptions is the ceiling decoders accept unless told otherwise.
func DefaultSupportedOptions() *StreamOptions {
	return &StreamOptions{
		GeneralizedStatements: true,
		RdfStar:               true,
		MaxNameTableSize:      DefaultMaxNameTableSize,
		MaxPrefixTableSize:    DefaultMaxPrefixTableSize,
		MaxDatatypeTableSize:  DefaultMaxDatatypeTableSize,
		Version:               ProtoVersion,
	}
}

// CheckCompatibility checks requested against the supported ceiling.
// The returned *OptionsError names the first violated bound.
func CheckCompatibility(requested, supported *StreamOptions) error {
	if requested.Version > supported.Version || requested.Version > ProtoVersion {
		return optionsErrorf(FieldVersion, "stream uses version %d, supported up to %d",
			requested.Version, min(supported.Version, ProtoVersion))
	}
	if requested.GeneralizedStatements && !supported.GeneralizedStatements {
		return optionsErrorf(FieldGeneralizedStatements, "stream uses generalized statements, which are not supported")
	}
	if requested.RdfStar && !supported.RdfStar {
		return optionsErrorf(FieldRdfStar, "stream uses RDF-star, which is not supported")
	}
	if requested.MaxNameTableSize > supported.MaxNameTableSize {
		return optionsErrorf(FieldNameTableSize, "name table size %d exceeds supported %d",
			requested.MaxNameTableSize, supported.MaxNameTableSize)
	}
	if requested.MaxNameTableSize < MinNameTableSize {
		return optionsErrorf(FieldNameTableSize, "name table size %d is below the minimum of %d",
			requested.MaxNameTableSize, MinNameTableSize)
	}
	if requested.MaxPrefixTableSize > supported.MaxPrefixTableSize {
		return optionsErrorf(FieldPrefixTableSize, "prefix table size %d exceeds supported %d",
			requested.MaxPrefixTableSize, supported.MaxPrefixTableSize)
	}
	if requested.MaxDatatypeTableSize > supported.MaxDatatypeTableSize {
		return optionsErrorf(FieldDatatypeTableSize, "datatype table size %d exceeds supported %d",
			requested.MaxDatatypeTableSize, supported.MaxDatatypeTableSize)
	}
	return checkPhysicalLogical(requested)
}

// Validate checks that o can open a stream on its own, without a ceiling:
// a known version, a physical type, a legal name table size and a logical
// type the physical type can carry.
func (o *StreamOptions) Validate() error {
	if o.Version == 0 || o.Version > ProtoVersion {
		return optionsErrorf(FieldVersion, "unsupported version %d", o.Version)
	}
	switch o.PhysicalType {
	case PhysicalTriples, PhysicalQuads, PhysicalGraphs:
	default:
		return optionsErrorf(FieldPhysicalType, "physical type %s is not a stream type", o.PhysicalType)
	}
	if o.MaxNameTableSize < MinNameTableSize {
		return optionsErrorf(FieldNameTableSize, "name table size %d is below the minimum of %d",
			o.MaxNameTableSize, MinNameTableSize)
	}
	return checkPhysicalLogical(o)
}

// checkPhysicalLogical rejects logical types that cannot be carried by the
// declared physical type.
func checkPhysicalLogical(o *StreamOptions) error {
	var conflict bool
	switch o.LogicalType.BaseType() {
	case LogicalFlatTriples, LogicalGraphs:
		conflict = o.PhysicalType == PhysicalQuads || o.PhysicalType == PhysicalGraphs
	case LogicalFlatQuads, LogicalDatasets:
		conflict = o.PhysicalType == PhysicalTriples
	}
	if conflict {
		return optionsErrorf(FieldLogicalType, "logical type %s is incompatible with physical type %s",
			o.LogicalType, o.PhysicalType)
	}
	return nil
}

// CheckLogicalStreamType checks that o declares expected or one of its
// subtypes. LogicalUnspecified accepts anything.
func CheckLogicalStreamType(o *StreamOptions, expected LogicalStreamType) error {
	if expected == LogicalUnspecified {
		return nil
	}
	if !o.LogicalType.IsEqualOrSubtypeOf(expected) {
		return optionsErrorf(FieldLogicalType, "expected logical type %s, stream declares %s",
			expected, o.LogicalType)
	}
	return nil
}
