package domainrecord

import "github.com/tinylib/msgp/msgp"

// MarshalMsg and UnmarshalMsg are written by hand in the shape
// tinylib/msgp's code generator produces (AppendMapHeader/AppendString/
// AppendUint64/AppendBytes on the way out, ReadMapHeaderBytes/
// ReadStringBytes/ReadUint64Bytes/ReadBytesBytes on the way in), since
// this module has no `//go:generate msgp` step wired into its build.
// They exist solely so benchmarks/record_bench_test.go has a
// hand-optimized MessagePack baseline to compare this module's CBOR
// codec against, mirroring the teacher's jetstreammeta_msgp benchmark
// fixture.

func (r *Record) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 4)
	b = msgp.AppendString(b, "name")
	b = msgp.AppendString(b, r.Name)
	b = msgp.AppendString(b, "id")
	b = msgp.AppendUint64(b, r.ID)
	b = msgp.AppendString(b, "tags")
	b = msgp.AppendArrayHeader(b, uint32(len(r.Tags)))
	for _, tg := range r.Tags {
		b = msgp.AppendString(b, tg)
	}
	b = msgp.AppendString(b, "payload")
	b = msgp.AppendBytes(b, r.Payload)
	return b, nil
}

func (r *Record) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return nil, err
		}
		switch key {
		case "name":
			r.Name, bts, err = msgp.ReadStringBytes(bts)
		case "id":
			r.ID, bts, err = msgp.ReadUint64Bytes(bts)
		case "tags":
			var n uint32
			n, bts, err = msgp.ReadArrayHeaderBytes(bts)
			if err != nil {
				return nil, err
			}
			r.Tags = make([]string, n)
			for j := uint32(0); j < n; j++ {
				r.Tags[j], bts, err = msgp.ReadStringBytes(bts)
				if err != nil {
					return nil, err
				}
			}
		case "payload":
			r.Payload, bts, err = msgp.ReadBytesBytes(bts, r.Payload[:0])
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return nil, err
		}
	}
	return bts, nil
}

func (batch *Batch) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, uint32(len(batch.Records)))
	for i := range batch.Records {
		var err error
		b, err = batch.Records[i].MarshalMsg(b)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (batch *Batch) UnmarshalMsg(bts []byte) ([]byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return nil, err
	}
	batch.Records = make([]Record, n)
	for i := uint32(0); i < n; i++ {
		bts, err = batch.Records[i].UnmarshalMsg(bts)
		if err != nil {
			return nil, err
		}
	}
	return bts, nil
}
