// =============================================================================
// internal/dns/resolver.go - Queries against the router resolver
// =============================================================================
package dns

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// Resolver sends queries to a single nameserver
type Resolver struct {
	client     *dns.Client
	options    QueryOptions
	nameserver string
}

// NewResolver creates a resolver with default options. nameserver is a
// host:port address.
func NewResolver(nameserver string) *Resolver {
	return NewResolverWithOptions(nameserver, QueryOptions{
		Timeout: 5 * time.Second,
		Retries: 3,
	})
}

// NewResolverWithOptions creates a resolver with custom options
func NewResolverWithOptions(nameserver string, opts QueryOptions) *Resolver {
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	return &Resolver{
		client:     &dns.Client{Timeout: opts.Timeout},
		options:    opts,
		nameserver: nameserver,
	}
}

// Nameserver returns the host:port the resolver queries
func (r *Resolver) Nameserver() string {
	return r.nameserver
}

// NameserverAddress turns a router address, with or without an API port,
// into the address of its DNS service
func NameserverAddress(address string) string {
	host := address
	if h, _, err := net.SplitHostPort(address); err == nil {
		host = h
	}
	return net.JoinHostPort(host, "53")
}

// WithDefaultPort adds the DNS port to a nameserver given without one
func WithDefaultPort(nameserver string) string {
	if _, _, err := net.SplitHostPort(nameserver); err == nil {
		return nameserver
	}
	return net.JoinHostPort(nameserver, "53")
}

// Query performs a recursive query for name and record type. A name the
// server does not know yields no answers and no error.
func (r *Resolver) Query(ctx context.Context, name string, recordType RecordType) ([]Answer, time.Duration, error) {
	start := time.Now()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), typeCode(recordType))
	msg.RecursionDesired = true

	var (
		response *dns.Msg
		err      error
	)
	for attempt := 0; attempt < r.options.Retries; attempt++ {
		response, _, err = r.client.ExchangeContext(ctx, msg, r.nameserver)
		if err == nil {
			break
		}
		if attempt < r.options.Retries-1 {
			select {
			case <-ctx.Done():
				return nil, time.Since(start), ctx.Err()
			case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
			}
		}
	}
	elapsed := time.Since(start)

	if err != nil {
		return nil, elapsed, fmt.Errorf("DNS query failed: %w", err)
	}
	if response == nil {
		return nil, elapsed, fmt.Errorf("received nil response")
	}
	switch response.Rcode {
	case dns.RcodeSuccess, dns.RcodeNameError:
	default:
		return nil, elapsed, fmt.Errorf("server answered %s", dns.RcodeToString[response.Rcode])
	}

	return parseResponse(response), elapsed, nil
}

// parseResponse keeps the A and CNAME answers of a response
func parseResponse(response *dns.Msg) []Answer {
	var answers []Answer
	for _, rr := range response.Answer {
		answer := Answer{Name: rr.Header().Name, TTL: rr.Header().Ttl}
		switch v := rr.(type) {
		case *dns.A:
			answer.Type = RecordTypeA
			answer.Value = v.A.String()
		case *dns.CNAME:
			answer.Type = RecordTypeCNAME
			answer.Value = v.Target
		default:
			continue
		}
		answers = append(answers, answer)
	}
	return answers
}

func typeCode(recordType RecordType) uint16 {
	if recordType == RecordTypeCNAME {
		return dns.TypeCNAME
	}
	return dns.TypeA
}
