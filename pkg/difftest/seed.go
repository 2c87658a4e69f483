package difftest

// SeedBuilder constructs fuzz inputs from operations, using the schema as the
// inverse of its decoder.
//
// Every operation is emitted as the discriminant byte that selects its
// variant followed by its payload, so the bytes decode back to exactly the
// same operations. The first encoding error sticks and is returned by Build.
type SeedBuilder struct {
	schema *Schema
	data   []byte
	err    error
}

// NewSeedBuilder starts a seed with the given run header bytes.
func NewSeedBuilder(schema *Schema, header []byte) *SeedBuilder {
	data := make([]byte, 0, len(header)+256)

	return &SeedBuilder{
		schema: schema,
		data:   append(data, header...),
	}
}

// Op appends one operation.
func (b *SeedBuilder) Op(op Operation) *SeedBuilder {
	if b.err != nil {
		return b
	}

	b.data, b.err = b.schema.Encode(b.data, op)

	return b
}

// Ops appends operations in order.
func (b *SeedBuilder) Ops(ops ...Operation) *SeedBuilder {
	for _, op := range ops {
		b.Op(op)
	}

	return b
}

// Raw appends bytes verbatim, for seeds that deliberately end mid-operation.
func (b *SeedBuilder) Raw(p ...byte) *SeedBuilder {
	if b.err == nil {
		b.data = append(b.data, p...)
	}

	return b
}

// Build returns a copy of the constructed seed.
func (b *SeedBuilder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	return append([]byte(nil), b.data...), nil
}
