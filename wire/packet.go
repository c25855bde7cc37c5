package wire

// Spec declares a packet class: a stable command id and an ordered field
// list, the first of which is always the implicit command field.
type Spec struct {
	ID     byte
	Name   string
	Fields []Field
}

// NewSpec declares a root packet class. fields must not themselves include
// the command field; it is prepended automatically.
func NewSpec(name string, id byte, fields ...Field) (Spec, error) {
	s := Spec{
		ID:     id,
		Name:   name,
		Fields: append([]Field{commandField()}, fields...),
	}
	return s, validateSpec(s)
}

// Extend declares a subclass: it inherits parent's fields (minus its
// command field) in order, then appends extra, then overrides the command
// id with id. This matches the inheritance rule that a subclass's field
// list is parent.fields ++ subclass_additions with the command field
// redeclared.
func Extend(parent Spec, name string, id byte, extra ...Field) (Spec, error) {
	fields := make([]Field, 0, len(parent.Fields)+len(extra))
	fields = append(fields, commandField())
	fields = append(fields, parent.Fields[1:]...)
	fields = append(fields, extra...)

	s := Spec{ID: id, Name: name, Fields: fields}
	return s, validateSpec(s)
}

func validateSpec(s Spec) error {
	if len(s.Fields) == 0 || s.Fields[0].Kind != KindCommand {
		return newSchema(CodeSchemaNotCommandFirst, "packet %q does not start with a command field", s.Name)
	}
	return nil
}

// Packet is an instance of a Spec: the command id plus a value for every
// non-command field, keyed by field name.
type Packet struct {
	Spec   *Spec
	Values map[string]interface{}
}

// New constructs a Packet from a field-name-to-value map. Every
// non-command field in spec must be present with a value of the matching
// Go type (uint32 for KindInteger, string for KindString); the command
// value is always taken from spec and never from values.
func New(spec *Spec, values map[string]interface{}) (*Packet, error) {
	p := &Packet{Spec: spec, Values: make(map[string]interface{}, len(spec.Fields))}

	for _, f := range spec.Fields {
		if f.Kind == KindCommand {
			continue
		}

		v, ok := values[f.Name]
		if !ok {
			return nil, newValidation(CodeValidationMissingField, "packet %q missing field %q", spec.Name, f.Name)
		}

		switch f.Kind {
		case KindInteger:
			iv, ok := v.(uint32)
			if !ok {
				return nil, newValidation(CodeValidationWrongType, "field %q of %q must be uint32", f.Name, spec.Name)
			}
			p.Values[f.Name] = iv

		case KindString:
			sv, ok := v.(string)
			if !ok {
				return nil, newValidation(CodeValidationWrongType, "field %q of %q must be string", f.Name, spec.Name)
			}
			if err := validateString(sv, f.MaxSize); err != nil {
				return nil, err
			}
			p.Values[f.Name] = sv
		}
	}

	return p, nil
}

// Int returns the value of an integer field, or 0 if absent.
func (p *Packet) Int(name string) uint32 {
	v, _ := p.Values[name].(uint32)
	return v
}

// Str returns the value of a string field, or "" if absent.
func (p *Packet) Str(name string) string {
	v, _ := p.Values[name].(string)
	return v
}

// Pack serializes the packet's payload: command byte followed by every
// field in declaration order, then prefixes a 4-byte little-endian length
// of that payload. The length does not include itself.
func (p *Packet) Pack() ([]byte, error) {
	payload := make([]byte, 0, 16)

	for _, f := range p.Spec.Fields {
		switch f.Kind {
		case KindCommand:
			payload = append(payload, encodeCommand(p.Spec.ID)...)
		case KindInteger:
			payload = append(payload, encodeInteger(p.Int(f.Name))...)
		case KindString:
			enc, err := encodeString(p.Str(f.Name), f.MaxSize)
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
	}

	framed := make([]byte, 0, 4+len(payload))
	framed = append(framed, encodeInteger(uint32(len(payload)))...)
	framed = append(framed, payload...)
	return framed, nil
}

// Unpack decodes a single payload (the bytes after the 4-byte length
// prefix) using spec: it consumes each field in order and rejects any
// trailing bytes.
func Unpack(spec *Spec, payload []byte) (*Packet, error) {
	id, rest, err := decodeCommand(payload)
	if err != nil {
		return nil, err
	}
	if id != spec.ID {
		return nil, newValidation(CodeValidationUnknownCommand, "payload command %d does not match spec %q (%d)", id, spec.Name, spec.ID)
	}

	p := &Packet{Spec: spec, Values: make(map[string]interface{}, len(spec.Fields))}

	for _, f := range spec.Fields[1:] {
		switch f.Kind {
		case KindInteger:
			var v uint32
			v, rest, err = decodeInteger(rest)
			if err != nil {
				return nil, err
			}
			p.Values[f.Name] = v

		case KindString:
			var v string
			v, rest, err = decodeString(rest, f.MaxSize)
			if err != nil {
				return nil, err
			}
			p.Values[f.Name] = v
		}
	}

	if len(rest) != 0 {
		return nil, newValidation(CodeValidationTrailingBytes, "payload for %q has %d trailing bytes", spec.Name, len(rest))
	}

	return p, nil
}
