package portal

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

const dnsTTL = 60

// DNSResponder answers every A query with a fixed address so clients of
// the rogue AP land on the portal whatever name they look up.
type DNSResponder struct {
	addr string
	ip   net.IP

	mu   sync.Mutex
	conn net.PacketConn
	wg   sync.WaitGroup
}

// NewDNSResponder creates a stopped responder.
func NewDNSResponder(addr string, ip net.IP) *DNSResponder {
	return &DNSResponder{addr: addr, ip: ip.To4()}
}

// Start binds the UDP socket and begins answering.
func (d *DNSResponder) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		return nil
	}
	if d.ip == nil {
		return errors.New("dns responder needs an IPv4 answer address")
	}
	conn, err := net.ListenPacket("udp", d.addr)
	if err != nil {
		return fmt.Errorf("dns listen on %s: %w", d.addr, err)
	}
	d.conn = conn
	d.wg.Add(1)
	go d.serve(conn)
	log.Printf("DNS responder listening on %s -> %s", conn.LocalAddr(), d.ip)
	return nil
}

// Stop closes the socket and waits for the serving goroutine to exit.
func (d *DNSResponder) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return
	}
	d.conn.Close()
	d.wg.Wait()
	d.conn = nil
}

// Addr returns the bound address, or "" when stopped.
func (d *DNSResponder) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return ""
	}
	return d.conn.LocalAddr().String()
}

func (d *DNSResponder) serve(conn net.PacketConn) {
	defer d.wg.Done()
	buf := make([]byte, 1500)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("DNS read error: %v", err)
			return
		}
		resp, ok := AnswerQuery(buf[:n], d.ip)
		if !ok {
			continue
		}
		if _, err := conn.WriteTo(resp, from); err != nil {
			log.Printf("DNS write error to %s: %v", from, err)
			continue
		}
		telemetry.DNSQueries.Inc()
	}
}

// AnswerQuery builds the reply to a raw DNS query, resolving every IN A
// question to ip. It reports false for packets that are not queries.
func AnswerQuery(query []byte, ip net.IP) ([]byte, bool) {
	var req layers.DNS
	if err := req.DecodeFromBytes(query, gopacket.NilDecodeFeedback); err != nil {
		return nil, false
	}
	if req.QR || len(req.Questions) == 0 {
		return nil, false
	}

	resp := layers.DNS{
		ID:           req.ID,
		QR:           true,
		OpCode:       req.OpCode,
		AA:           true,
		RD:           req.RD,
		RA:           true,
		ResponseCode: layers.DNSResponseCodeNoErr,
		Questions:    req.Questions,
	}
	for _, q := range req.Questions {
		if q.Type != layers.DNSTypeA || q.Class != layers.DNSClassIN {
			continue
		}
		resp.Answers = append(resp.Answers, layers.DNSResourceRecord{
			Name:  q.Name,
			Type:  layers.DNSTypeA,
			Class: layers.DNSClassIN,
			TTL:   dnsTTL,
			IP:    ip,
		})
	}

	out := gopacket.NewSerializeBuffer()
	if err := resp.SerializeTo(out, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		return nil, false
	}
	return out.Bytes(), true
}
