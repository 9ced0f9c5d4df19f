package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records persisted by the badger engine.
// Timestamps are stored as Unix microseconds and decode in UTC.
var (
	IDMUS               = idMUS{}
	UploadMUS           = uploadMUS{}
	RawRecordMUS        = rawRecordMUS{}
	NormalizedRecordMUS = normalizedRecordMUS{}
	EnrichmentRecordMUS = enrichmentRecordMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// writer appends fields to a pre-sized buffer.
type writer struct {
	bs []byte
	n  int
}

func (w *writer) id(v ID) { w.n += IDMUS.Marshal(v, w.bs[w.n:]) }
func (w *writer) str(v string) { w.n += ord.String.Marshal(v, w.bs[w.n:]) }
func (w *writer) i64(v int64) { w.n += varint.Int64.Marshal(v, w.bs[w.n:]) }
func (w *writer) boolean(v bool) { w.n += ord.Bool.Marshal(v, w.bs[w.n:]) }
func (w *writer) time(v time.Time) { w.i64(v.UnixMicro()) }

// reader consumes fields in order and stops at the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) id() (v ID) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = IDMUS.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) str() (v string) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) i64() (v int64) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) boolean() (v bool) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *reader) time() time.Time {
	micros := r.i64()
	if r.err != nil {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}

func timeSize(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

type uploadMUS struct{}

func (uploadMUS) Marshal(v Upload, bs []byte) (n int) {
	w := writer{bs: bs}
	w.id(v.Id)
	w.str(v.Filename)
	w.str(string(v.FileType))
	w.i64(v.Size)
	w.str(v.Checksum)
	w.time(v.UploadedAt)
	return w.n
}

func (uploadMUS) Unmarshal(bs []byte) (v Upload, n int, err error) {
	r := reader{bs: bs}
	v.Id = r.id()
	v.Filename = r.str()
	v.FileType = FileType(r.str())
	v.Size = r.i64()
	v.Checksum = r.str()
	v.UploadedAt = r.time()
	return v, r.n, r.err
}

func (uploadMUS) Size(v Upload) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Filename) +
		ord.String.Size(string(v.FileType)) +
		varint.Int64.Size(v.Size) +
		ord.String.Size(v.Checksum) +
		timeSize(v.UploadedAt)
}

func (s uploadMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type rawRecordMUS struct{}

func (rawRecordMUS) Marshal(v RawRecord, bs []byte) (n int) {
	w := writer{bs: bs}
	w.id(v.Id)
	w.id(v.UploadId)
	w.str(v.Payload)
	w.str(v.Fingerprint)
	w.time(v.CreatedAt)
	return w.n
}

func (rawRecordMUS) Unmarshal(bs []byte) (v RawRecord, n int, err error) {
	r := reader{bs: bs}
	v.Id = r.id()
	v.UploadId = r.id()
	v.Payload = r.str()
	v.Fingerprint = r.str()
	v.CreatedAt = r.time()
	return v, r.n, r.err
}

func (rawRecordMUS) Size(v RawRecord) int {
	return IDMUS.Size(v.Id) +
		IDMUS.Size(v.UploadId) +
		ord.String.Size(v.Payload) +
		ord.String.Size(v.Fingerprint) +
		timeSize(v.CreatedAt)
}

func (s rawRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type normalizedRecordMUS struct{}

func (normalizedRecordMUS) Marshal(v NormalizedRecord, bs []byte) (n int) {
	w := writer{bs: bs}
	w.id(v.Id)
	w.id(v.RawId)
	w.time(v.CreatedAt)
	for _, col := range Schema {
		val := col.Get(&v.Columns)
		w.boolean(val != nil)
		switch x := val.(type) {
		case string:
			w.str(x)
		case int64:
			w.i64(x)
		case time.Time:
			w.time(x)
		case bool:
			w.boolean(x)
		}
	}
	return w.n
}

func (normalizedRecordMUS) Unmarshal(bs []byte) (v NormalizedRecord, n int, err error) {
	r := reader{bs: bs}
	v.Id = r.id()
	v.RawId = r.id()
	v.CreatedAt = r.time()
	for _, col := range Schema {
		if !r.boolean() {
			continue
		}
		var val any
		switch col.Type {
		case ColumnString, ColumnText:
			val = r.str()
		case ColumnInteger:
			val = r.i64()
		case ColumnTimestamp:
			val = r.time()
		case ColumnBoolean:
			val = r.boolean()
		}
		if r.err != nil {
			break
		}
		if err := col.Set(&v.Columns, val); err != nil {
			return v, r.n, err
		}
	}
	return v, r.n, r.err
}

func (normalizedRecordMUS) Size(v NormalizedRecord) int {
	size := IDMUS.Size(v.Id) + IDMUS.Size(v.RawId) + timeSize(v.CreatedAt)
	for _, col := range Schema {
		val := col.Get(&v.Columns)
		size += ord.Bool.Size(val != nil)
		switch x := val.(type) {
		case string:
			size += ord.String.Size(x)
		case int64:
			size += varint.Int64.Size(x)
		case time.Time:
			size += timeSize(x)
		case bool:
			size += ord.Bool.Size(x)
		}
	}
	return size
}

func (s normalizedRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type enrichmentRecordMUS struct{}

func (enrichmentRecordMUS) Marshal(v EnrichmentRecord, bs []byte) (n int) {
	w := writer{bs: bs}
	w.id(v.Id)
	w.id(v.NormalizedId)
	w.str(v.Annotation)
	w.time(v.CreatedAt)
	return w.n
}

func (enrichmentRecordMUS) Unmarshal(bs []byte) (v EnrichmentRecord, n int, err error) {
	r := reader{bs: bs}
	v.Id = r.id()
	v.NormalizedId = r.id()
	v.Annotation = r.str()
	v.CreatedAt = r.time()
	return v, r.n, r.err
}

func (enrichmentRecordMUS) Size(v EnrichmentRecord) int {
	return IDMUS.Size(v.Id) +
		IDMUS.Size(v.NormalizedId) +
		ord.String.Size(v.Annotation) +
		timeSize(v.CreatedAt)
}

func (s enrichmentRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
