package domain

// FrameFamily is the 802.11 frame type taken from the 2-bit type field.
type FrameFamily int

const (
	FamilyManagement FrameFamily = iota
	FamilyControl
	FamilyData
	FamilyUnknown
)

func (f FrameFamily) String() string {
	switch f {
	case FamilyManagement:
		return "Management"
	case FamilyControl:
		return "Control"
	case FamilyData:
		return "Data"
	}
	return "Unknown"
}

// Bucket is one of the five protocol counters shown on the capture screen.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketHTTP
	BucketDNS
	BucketARP
	BucketTCP
	BucketUDP
)

// Buckets lists the tracked buckets in display order.
var Buckets = []Bucket{BucketHTTP, BucketDNS, BucketARP, BucketTCP, BucketUDP}

func (b Bucket) String() string {
	switch b {
	case BucketHTTP:
		return "HTTP"
	case BucketDNS:
		return "DNS"
	case BucketARP:
		return "ARP"
	case BucketTCP:
		return "TCP"
	case BucketUDP:
		return "UDP"
	}
	return "none"
}

// ProtocolCounters is a point-in-time copy of the capture counters.
type ProtocolCounters struct {
	HTTP  uint64 `json:"http"`
	DNS   uint64 `json:"dns"`
	ARP   uint64 `json:"arp"`
	TCP   uint64 `json:"tcp"`
	UDP   uint64 `json:"udp"`
	Total uint64 `json:"total"` // every well-formed frame, matched or not
}

// Get returns the counter for b, or 0 for BucketNone.
func (c ProtocolCounters) Get(b Bucket) uint64 {
	switch b {
	case BucketHTTP:
		return c.HTTP
	case BucketDNS:
		return c.DNS
	case BucketARP:
		return c.ARP
	case BucketTCP:
		return c.TCP
	case BucketUDP:
		return c.UDP
	}
	return 0
}

// Matched is the sum of the five bucket counters.
func (c ProtocolCounters) Matched() uint64 {
	return c.HTTP + c.DNS + c.ARP + c.TCP + c.UDP
}
