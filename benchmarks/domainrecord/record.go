// Package domainrecord defines a small realistic protocol record and
// two independent ways to serialize it, used purely as a benchmark
// fixture (benchmarks/record_bench_test.go) comparing this module's
// CBOR codec against hand-written tinylib/msgp code on equivalent
// data, mirroring the teacher's jetstreammeta_msgp comparison
// (benchmarks/jetstreammeta_msgp/msgp_bench_types.go) at a scale this
// module's own test fixtures can build without a code generator.
package domainrecord

import cbor "github.com/mischief/libcbor/runtime"

// Record models one entry of a small event log: an id, a name, a set
// of tags, and an opaque payload.
type Record struct {
	ID      uint64
	Name    string
	Tags    []string
	Payload []byte
}

// Batch is a sequence of Records, the unit this benchmark encodes and
// decodes end to end.
type Batch struct {
	Records []Record
}

// NewFixture builds a Batch of n records with deterministic, varied
// content so that encode/decode costs are representative rather than
// degenerate (all-zero or all-identical data).
func NewFixture(n int) Batch {
	b := Batch{Records: make([]Record, n)}
	for i := range b.Records {
		b.Records[i] = Record{
			ID:      uint64(i),
			Name:    fixtureName(i),
			Tags:    []string{"alpha", "beta", fixtureName(i)},
			Payload: fixturePayload(i),
		}
	}
	return b
}

func fixtureName(i int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	return "record-" + string(alphabet[i%len(alphabet)]) + string(alphabet[(i/len(alphabet))%len(alphabet)])
}

func fixturePayload(i int) []byte {
	p := make([]byte, 32)
	for j := range p {
		p[j] = byte((i*31 + j) % 256)
	}
	return p
}

// ToValue packs r into this module's value tree.
func ToValue(a cbor.Allocator, r Record) (*cbor.Value, error) {
	return cbor.Pack(a, "{sssuscsb}", "name", r.Name, "id", r.ID, "tags", tagsValue(a, r.Tags), "payload", r.Payload)
}

func tagsValue(a cbor.Allocator, tags []string) *cbor.Value {
	arr, err := cbor.NewArray(a, 0)
	if err != nil {
		panic(err)
	}
	for _, tg := range tags {
		v, err := cbor.NewText(a, tg)
		if err != nil {
			panic(err)
		}
		if err := arr.Append(a, v); err != nil {
			panic(err)
		}
	}
	return arr
}

// BatchToValue packs an entire Batch as a top-level array of records.
func BatchToValue(a cbor.Allocator, batch Batch) (*cbor.Value, error) {
	arr, err := cbor.NewArray(a, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range batch.Records {
		rv, err := ToValue(a, r)
		if err != nil {
			arr.Free(a)
			return nil, err
		}
		if err := arr.Append(a, rv); err != nil {
			rv.Free(a)
			arr.Free(a)
			return nil, err
		}
	}
	return arr, nil
}

// BatchFromValue is the inverse of BatchToValue.
func BatchFromValue(v *cbor.Value) (Batch, error) {
	batch := Batch{Records: make([]Record, v.Len())}
	for i := 0; i < v.Len(); i++ {
		rv := v.At(i)
		var name string
		var id uint64
		var payload []byte
		var tagsArr *cbor.Value
		err := cbor.Unpack(cbor.DefaultAllocator, rv, "{SsSuScSb}", "name", &name, "id", &id, "tags", &tagsArr, "payload", &payload)
		if err != nil {
			return Batch{}, err
		}
		tags := make([]string, tagsArr.Len())
		for j := range tags {
			tags[j] = tagsArr.At(j).Text()
		}
		batch.Records[i] = Record{ID: id, Name: name, Tags: tags, Payload: payload}
	}
	return batch, nil
}
