package migrator

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/consts"
)

const hashPrefix = "h1:"

type (
	// SumFile is the checksum manifest of a Collection: one entry per forward
	// and rollback file, in execution order, followed by a total over all
	// entries. Entry digests are chained, each one covering the file text and
	// the previous digest, so a reordered or relocated entry is a mismatch too.
	//
	// The text form is the familiar h1 format:
	//
	//	h1:<base64 total>
	//	0001-init.sql h1:<base64 digest>
	//	0001-init.rollback.sql h1:<base64 digest>
	SumFile struct {
		entries  []SumEntry
		declared string // total read from disk, empty for computed files
	}

	// SumEntry is a single line of a SumFile.
	SumEntry struct {
		// Name is the migration ID plus its extension, never a full path.
		Name   string
		Digest [sha256.Size]byte
	}

	// SumMismatchError describes the first entry at which two sum files differ.
	SumMismatchError struct {
		Name   string
		Reason string
	}
)

func (e *SumMismatchError) Error() string {
	if e.Name == "" {
		return "sum mismatch: " + e.Reason
	}

	return fmt.Sprintf("sum mismatch at %s: %s", e.Name, e.Reason)
}

// SumFile hashes the forward and rollback text of every migration in All()
// order. Texts are read through each migration's source, so a loaded
// collection is hashed without touching the store again.
//
// Example:
//
//	sum, err := coll.SumFile(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	_, _ = sum.WriteTo(os.Stdout)
func (c *Collection) SumFile(ctx context.Context) (*SumFile, error) {
	sum := &SumFile{}
	for _, m := range c.All() {
		if m.source == nil {
			return nil, &ValidationError{Path: m.Path, Reason: "migration has no source"}
		}

		forward, err := m.source.ForwardText(ctx)
		if err != nil {
			return nil, err
		}
		sum.add(m.ID+consts.MigrationExt, forward)

		rollback, err := m.source.RollbackText(ctx)
		if err != nil {
			return nil, err
		}
		if rollback != nil {
			sum.add(m.ID+consts.RollbackExt, *rollback)
		}
	}

	return sum, nil
}

// ReadSumFile parses the text form written by WriteTo. Blank lines are
// ignored and entry names may contain spaces.
func ReadSumFile(r io.Reader) (*SumFile, error) {
	sum := &SumFile{}
	scanner := bufio.NewScanner(r)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if sum.declared == "" {
			if _, err := decodeDigest(line); err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid total", lineNo)
			}
			sum.declared = line
			continue
		}

		idx := strings.LastIndexByte(line, ' ')
		if idx <= 0 {
			return nil, errors.Errorf("line %d: expected \"<name> h1:<digest>\", got %q", lineNo, line)
		}

		name := strings.TrimSpace(line[:idx])
		digest, err := decodeDigest(line[idx+1:])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: invalid digest for %s", lineNo, name)
		}

		sum.entries = append(sum.entries, SumEntry{Name: name, Digest: digest})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read sum file")
	}

	return sum, nil
}

// Entries returns a copy of the entries in order.
func (s *SumFile) Entries() []SumEntry {
	return slices.Clone(s.entries)
}

// Total is the h1 digest over every entry digest, or "" when there are none.
func (s *SumFile) Total() string {
	if len(s.entries) == 0 {
		return ""
	}

	h := sha256.New()
	for _, e := range s.entries {
		h.Write(e.Digest[:])
	}

	return encodeDigest(h.Sum(nil))
}

// WriteTo implements io.WriterTo.
func (s *SumFile) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString(s.Total())
	sb.WriteByte('\n')

	for _, e := range s.entries {
		sb.WriteString(e.Name)
		sb.WriteByte(' ')
		sb.WriteString(encodeDigest(e.Digest[:]))
		sb.WriteByte('\n')
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Verify compares s, computed from the current migrations, with expected,
// usually read from disk. Because digests are chained only the first
// difference is reported, as a *SumMismatchError.
func (s *SumFile) Verify(expected *SumFile) error {
	for i := range max(len(s.entries), len(expected.entries)) {
		switch {
		case i >= len(expected.entries):
			return &SumMismatchError{Name: s.entries[i].Name, Reason: "added"}
		case i >= len(s.entries):
			return &SumMismatchError{Name: expected.entries[i].Name, Reason: "removed"}
		case s.entries[i].Name != expected.entries[i].Name:
			return &SumMismatchError{
				Name:   s.entries[i].Name,
				Reason: fmt.Sprintf("expected %s", expected.entries[i].Name),
			}
		case s.entries[i].Digest != expected.entries[i].Digest:
			return &SumMismatchError{Name: s.entries[i].Name, Reason: "modified"}
		}
	}

	if expected.declared != "" && expected.declared != expected.Total() {
		return &SumMismatchError{Reason: "total hash does not match entries"}
	}

	return nil
}

func (s *SumFile) add(name, text string) {
	h := sha256.New()
	h.Write([]byte(text))
	if n := len(s.entries); n > 0 {
		h.Write(s.entries[n-1].Digest[:])
	}

	e := SumEntry{Name: name}
	copy(e.Digest[:], h.Sum(nil))
	s.entries = append(s.entries, e)
}

func encodeDigest(b []byte) string {
	return hashPrefix + base64.StdEncoding.EncodeToString(b)
}

func decodeDigest(s string) ([sha256.Size]byte, error) {
	var digest [sha256.Size]byte

	raw, ok := strings.CutPrefix(s, hashPrefix)
	if !ok {
		return digest, errors.Errorf("missing %q prefix: %s", hashPrefix, s)
	}

	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return digest, errors.Wrap(err, "bad base64")
	}

	if len(b) != sha256.Size {
		return digest, errors.Errorf("digest is %d bytes, want %d", len(b), sha256.Size)
	}

	copy(digest[:], b)
	return digest, nil
}
