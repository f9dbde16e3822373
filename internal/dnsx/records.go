package dnsx

import (
	"context"
	"fmt"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// recordTypes is the enumeration order used for display and counting.
var recordTypes = []string{"A", "AAAA", "CNAME", "MX", "NS", "TXT", "SOA"}

// RecordSet holds every record found for one domain, keyed by type.
// Missing types have no key; lookup failures are collected per type so one
// absent record never hides the rest.
type RecordSet struct {
	// Domain is the queried domain.
	Domain string

	// Records maps a type name to its values.
	Records map[string][]string

	// Errors maps a type name to its lookup failure, if any.
	Errors map[string]string
}

// Types returns the enumeration order for record types.
func Types() []string {
	return recordTypes
}

// Total returns the number of record values found across all types.
func (s *RecordSet) Total() int {
	total := 0
	for _, values := range s.Records {
		total += len(values)
	}
	return total
}

// soaQueryFunc performs the SOA query. Swappable so tests never hit port 53.
type soaQueryFunc func(ctx context.Context, domain, nameserver string) ([]string, error)

// Enumerator collects the full record set of a domain.
type Enumerator struct {
	resolver *Resolver
	querySOA soaQueryFunc
}

// EnumeratorOption configures an Enumerator.
type EnumeratorOption func(*Enumerator)

// WithEnumeratorResolver replaces the underlying resolver.
func WithEnumeratorResolver(r *Resolver) EnumeratorOption {
	return func(e *Enumerator) {
		e.resolver = r
	}
}

// WithSOAQuery replaces the SOA query implementation.
func WithSOAQuery(fn soaQueryFunc) EnumeratorOption {
	return func(e *Enumerator) {
		e.querySOA = fn
	}
}

// NewEnumerator creates an Enumerator with default lookups.
func NewEnumerator(opts ...EnumeratorOption) *Enumerator {
	e := &Enumerator{
		resolver: NewResolver(),
		querySOA: querySOA,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enumerate looks up every supported record type for domain. Individual
// lookup failures are recorded in the result rather than returned, so the
// caller always gets whatever the domain does publish.
func (e *Enumerator) Enumerate(ctx context.Context, domain string) *RecordSet {
	set := &RecordSet{
		Domain:  domain,
		Records: make(map[string][]string),
		Errors:  make(map[string]string),
	}

	r := e.resolver

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if ips, err := r.resolver.LookupIPAddr(lookupCtx, domain); err != nil {
		set.Errors["A"] = err.Error()
	} else {
		for _, ip := range ips {
			if v4 := ip.IP.To4(); v4 != nil {
				set.Records["A"] = append(set.Records["A"], v4.String())
			} else {
				set.Records["AAAA"] = append(set.Records["AAAA"], ip.IP.String())
			}
		}
	}

	if cname, err := r.resolver.LookupCNAME(lookupCtx, domain); err != nil {
		set.Errors["CNAME"] = err.Error()
	} else if trimmed := strings.TrimSuffix(cname, "."); trimmed != "" && trimmed != domain {
		set.Records["CNAME"] = []string{trimmed}
	}

	if mx, err := r.LookupMX(ctx, domain); err != nil {
		set.Errors["MX"] = err.Error()
	} else {
		set.Records["MX"] = mx
	}

	var nameservers []string
	if ns, err := r.resolver.LookupNS(lookupCtx, domain); err != nil {
		set.Errors["NS"] = err.Error()
	} else {
		for _, record := range ns {
			host := strings.TrimSuffix(record.Host, ".")
			nameservers = append(nameservers, host)
		}
		set.Records["NS"] = nameservers
	}

	if txt, err := r.resolver.LookupTXT(lookupCtx, domain); err != nil {
		set.Errors["TXT"] = err.Error()
	} else {
		set.Records["TXT"] = txt
	}

	e.enumerateSOA(ctx, domain, nameservers, set)

	return set
}

// enumerateSOA asks the domain's own nameservers for the SOA record. The
// stub resolver API has no SOA lookup, so this goes through a direct query.
func (e *Enumerator) enumerateSOA(ctx context.Context, domain string, nameservers []string, set *RecordSet) {
	if len(nameservers) == 0 {
		set.Errors["SOA"] = "no nameservers to query"
		return
	}

	var lastErr error
	for _, ns := range nameservers {
		values, err := e.querySOA(ctx, domain, ns)
		if err != nil {
			lastErr = err
			continue
		}
		if len(values) > 0 {
			set.Records["SOA"] = values
			return
		}
	}

	if lastErr != nil {
		set.Errors["SOA"] = lastErr.Error()
	}
}

// querySOA issues one SOA question to nameserver on port 53.
func querySOA(ctx context.Context, domain, nameserver string) ([]string, error) {
	client := &mdns.Client{Timeout: 5 * time.Second}

	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(domain), mdns.TypeSOA)

	reply, _, err := client.ExchangeContext(ctx, msg, nameserver+":53")
	if err != nil {
		return nil, fmt.Errorf("dnsx: soa query via %s: %w", nameserver, err)
	}

	var values []string
	for _, answer := range reply.Answer {
		if soa, ok := answer.(*mdns.SOA); ok {
			values = append(values, fmt.Sprintf("mname=%s rname=%s serial=%d refresh=%d retry=%d expire=%d minttl=%d",
				soa.Ns, soa.Mbox, soa.Serial, soa.Refresh, soa.Retry, soa.Expire, soa.Minttl))
		}
	}
	return values, nil
}
