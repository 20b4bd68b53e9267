package cluster

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/stapply-ai/jobmap/record"
)

// Snapshot layout: uint32 record count, then each record as length-prefixed
// strings, raw float64 coordinates, and flag-prefixed optional fields. The
// snapshot holds the normalized record set; trees are rebuilt on load.

// SaveCompressed writes the record set as a zstd-compressed snapshot.
func SaveCompressed(filename string, records []record.JobRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriterSize(file, 1024*1024)
	enc, err := zstd.NewWriter(bufWriter,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %v", err)
	}

	binary.Write(enc, binary.LittleEndian, uint32(len(records)))
	for i := range records {
		if err := writeRecord(enc, &records[i]); err != nil {
			enc.Close()
			return fmt.Errorf("failed to write record: %v", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close encoder: %v", err)
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %v", err)
	}
	return nil
}

// LoadCompressed reads a snapshot back into a record slice.
func LoadCompressed(filename string) ([]record.JobRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	bufReader := bufio.NewReaderSize(file, 1024*1024)
	dec, err := zstd.NewReader(bufReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer dec.Close()

	var count uint32
	if err := binary.Read(dec, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read record count: %v", err)
	}

	records := make([]record.JobRecord, count)
	for i := range records {
		if err := readRecord(dec, &records[i]); err != nil {
			return nil, fmt.Errorf("failed to read record %d: %v", i, err)
		}
	}
	return records, nil
}

func writeRecord(w io.Writer, rec *record.JobRecord) error {
	for _, s := range []string{
		rec.URL, rec.Title, rec.Company, rec.Location, rec.ATSID, rec.ID,
		rec.SalaryCurrency, rec.SalaryPeriod, rec.CompanySlug, rec.ValueSlug,
	} {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, rec.Lat); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rec.Lng); err != nil {
		return err
	}
	for _, opt := range []*string{rec.SalaryMin, rec.SalaryMax, rec.SalarySummary} {
		if err := writeOptional(w, opt); err != nil {
			return err
		}
	}
	return nil
}

func readRecord(r io.Reader, rec *record.JobRecord) error {
	fields := []*string{
		&rec.URL, &rec.Title, &rec.Company, &rec.Location, &rec.ATSID, &rec.ID,
		&rec.SalaryCurrency, &rec.SalaryPeriod, &rec.CompanySlug, &rec.ValueSlug,
	}
	for _, f := range fields {
		s, err := readString(r)
		if err != nil {
			return err
		}
		*f = s
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Lat); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.Lng); err != nil {
		return err
	}
	for _, opt := range []**string{&rec.SalaryMin, &rec.SalaryMax, &rec.SalarySummary} {
		s, err := readOptional(r)
		if err != nil {
			return err
		}
		*opt = s
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeOptional(w io.Writer, s *string) error {
	present := uint8(0)
	if s != nil {
		present = 1
	}
	if err := binary.Write(w, binary.LittleEndian, present); err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	return writeString(w, *s)
}

func readOptional(r io.Reader) (*string, error) {
	var present uint8
	if err := binary.Read(r, binary.LittleEndian, &present); err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
