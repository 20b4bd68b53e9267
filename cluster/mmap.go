package cluster

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/stapply-ai/jobmap/record"
)

// MMapWriter handles writing to memory-mapped files
type MMapWriter struct {
	data   mmap.MMap
	offset int
}

func NewMMapWriter(data mmap.MMap) *MMapWriter {
	return &MMapWriter{data: data}
}

func (w *MMapWriter) WriteUint8(v uint8) {
	w.data[w.offset] = v
	w.offset++
}

func (w *MMapWriter) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.data[w.offset:], v)
	w.offset += 4
}

func (w *MMapWriter) WriteFloat64(v float64) {
	binary.LittleEndian.PutUint64(w.data[w.offset:], math.Float64bits(v))
	w.offset += 8
}

func (w *MMapWriter) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	copy(w.data[w.offset:], s)
	w.offset += len(s)
}

// MMapReader handles reading from memory-mapped files
type MMapReader struct {
	data   mmap.MMap
	offset int
}

func NewMMapReader(data mmap.MMap) *MMapReader {
	return &MMapReader{data: data}
}

func (r *MMapReader) ReadUint8() uint8 {
	v := r.data[r.offset]
	r.offset++
	return v
}

func (r *MMapReader) ReadUint32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v
}

func (r *MMapReader) ReadFloat64() float64 {
	v := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return math.Float64frombits(v)
}

func (r *MMapReader) ReadString() string {
	n := int(r.ReadUint32())
	s := string(r.data[r.offset : r.offset+n])
	r.offset += n
	return s
}

// snapshotSize calculates the total byte size of the mmap snapshot layout.
func snapshotSize(records []record.JobRecord) int64 {
	size := int64(4) // record count

	for i := range records {
		rec := &records[i]
		for _, s := range []string{
			rec.URL, rec.Title, rec.Company, rec.Location, rec.ATSID, rec.ID,
			rec.SalaryCurrency, rec.SalaryPeriod, rec.CompanySlug, rec.ValueSlug,
		} {
			size += 4 + int64(len(s))
		}
		size += 16 // lat + lng
		for _, opt := range []*string{rec.SalaryMin, rec.SalaryMax, rec.SalarySummary} {
			size++
			if opt != nil {
				size += 4 + int64(len(*opt))
			}
		}
	}
	return size
}

// SaveMMap writes the record set into a memory-mapped file. Same logical
// layout as the zstd snapshot, uncompressed, for near-instant loads.
func SaveMMap(filename string, records []record.JobRecord) error {
	size := snapshotSize(records)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	if err := file.Truncate(size); err != nil {
		return fmt.Errorf("failed to size file: %v", err)
	}

	data, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to mmap file: %v", err)
	}
	defer data.Unmap()

	w := NewMMapWriter(data)
	w.WriteUint32(uint32(len(records)))
	for i := range records {
		rec := &records[i]
		for _, s := range []string{
			rec.URL, rec.Title, rec.Company, rec.Location, rec.ATSID, rec.ID,
			rec.SalaryCurrency, rec.SalaryPeriod, rec.CompanySlug, rec.ValueSlug,
		} {
			w.WriteString(s)
		}
		w.WriteFloat64(rec.Lat)
		w.WriteFloat64(rec.Lng)
		for _, opt := range []*string{rec.SalaryMin, rec.SalaryMax, rec.SalarySummary} {
			if opt == nil {
				w.WriteUint8(0)
			} else {
				w.WriteUint8(1)
				w.WriteString(*opt)
			}
		}
	}

	if err := data.Flush(); err != nil {
		return fmt.Errorf("failed to flush mmap: %v", err)
	}
	return nil
}

// LoadMMap reads a record set from a memory-mapped snapshot file.
func LoadMMap(filename string) ([]record.JobRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap file: %v", err)
	}
	defer data.Unmap()

	r := NewMMapReader(data)
	count := r.ReadUint32()

	records := make([]record.JobRecord, count)
	for i := range records {
		rec := &records[i]
		fields := []*string{
			&rec.URL, &rec.Title, &rec.Company, &rec.Location, &rec.ATSID, &rec.ID,
			&rec.SalaryCurrency, &rec.SalaryPeriod, &rec.CompanySlug, &rec.ValueSlug,
		}
		for _, f := range fields {
			*f = r.ReadString()
		}
		rec.Lat = r.ReadFloat64()
		rec.Lng = r.ReadFloat64()
		for _, opt := range []**string{&rec.SalaryMin, &rec.SalaryMax, &rec.SalarySummary} {
			if r.ReadUint8() == 1 {
				s := r.ReadString()
				*opt = &s
			}
		}
	}
	return records, nil
}
