package capture

import (
	"bytes"
	"fmt"
	"net"
	"strings"

	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

// BucketTable maps a frame family to the protocol counter it feeds.
type BucketTable map[domain.FrameFamily]domain.Bucket

// DefaultBuckets is the family → counter mapping shown on the capture screen.
//
// FIXME: this conflates the 802.11 frame type with application protocols.
// Only Data frames can carry an HTTP request, so they feed the HTTP counter
// and drive the Host: scan; DNS/ARP/TCP/UDP have no family mapped and stay at
// zero until real L3/L4 detection replaces this table.
var DefaultBuckets = BucketTable{
	domain.FamilyData: domain.BucketHTTP,
}

// minFrameLen covers frame control, duration, addr1 and addr2.
const minFrameLen = 16

// maxHostLen bounds the extracted host to a DNS name's length.
const maxHostLen = 253

var hostMarker = []byte("Host:")

// Classification is the result of classifying one frame.
type Classification struct {
	Family domain.FrameFamily
	Bucket domain.Bucket // BucketNone when the family is unmapped
	Source net.HardwareAddr
	Host   string // only for frames in the HTTP bucket carrying a Host: header
	Line   string
}

// Classifier turns raw frames into classifications. It holds no per-frame
// state and is safe for concurrent use.
type Classifier struct {
	Buckets BucketTable
}

// NewClassifier creates a classifier using table, or DefaultBuckets when nil.
func NewClassifier(table BucketTable) Classifier {
	if table == nil {
		table = DefaultBuckets
	}
	return Classifier{Buckets: table}
}

// Classify inspects the valid part of f. It returns false for frames too
// short to carry a source address; those are skipped by the caller.
func (c Classifier) Classify(f domain.Frame) (Classification, bool) {
	data := f.Bytes()
	if len(data) < minFrameLen {
		return Classification{}, false
	}

	family := familyOf(data[0])
	bucket := c.Buckets[family]
	src := net.HardwareAddr(append([]byte(nil), data[10:16]...))

	label := family.String()
	if bucket != domain.BucketNone {
		label = bucket.String()
	}

	cl := Classification{
		Family: family,
		Bucket: bucket,
		Source: src,
		Line:   fmt.Sprintf("%s from %s", label, macSuffix(src)),
	}

	if bucket == domain.BucketHTTP {
		if host, ok := extractHost(data); ok {
			cl.Host = host
			cl.Line = "HTTP to " + host
		}
	}
	return cl, true
}

// familyOf decodes the 2-bit type field of the frame control byte.
func familyOf(fc byte) domain.FrameFamily {
	switch layers.Dot11Type(fc >> 2).MainType() {
	case layers.Dot11TypeMgmt:
		return domain.FamilyManagement
	case layers.Dot11TypeCtrl:
		return domain.FamilyControl
	case layers.Dot11TypeData:
		return domain.FamilyData
	}
	return domain.FamilyUnknown
}

// extractHost is a best-effort heuristic, not an HTTP parser: it finds the
// first "Host:" anywhere in the frame and takes the bytes up to the next CR.
func extractHost(data []byte) (string, bool) {
	i := bytes.Index(data, hostMarker)
	if i < 0 {
		return "", false
	}
	rest := data[i+len(hostMarker):]
	if end := bytes.IndexByte(rest, '\r'); end >= 0 {
		rest = rest[:end]
	}
	if len(rest) > maxHostLen {
		rest = rest[:maxHostLen]
	}
	host := strings.TrimLeft(strings.ToValidUTF8(string(rest), "?"), " \t")
	if host == "" {
		return "", false
	}
	return host, true
}

// macSuffix returns the last three octets, e.g. "dd:ee:ff".
func macSuffix(mac net.HardwareAddr) string {
	s := strings.ToLower(mac.String())
	if len(s) < 9 {
		return s
	}
	return s[9:]
}
