package talon

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/synqronlabs/talon/dkim"
	"github.com/synqronlabs/talon/spf"
)

// ToMessagePack serializes the report to MessagePack format, for callers
// that queue or persist reports. The encoding uses the same field names as
// the JSON form.
func (r *Report) ToMessagePack() ([]byte, error) {
	b := msgp.AppendMapHeader(nil, 9)
	b = msgp.AppendString(b, "id")
	b = msgp.AppendString(b, r.ID)
	b = msgp.AppendString(b, "domain")
	b = msgp.AppendString(b, r.Domain)
	b = msgp.AppendString(b, "time_utc")
	b = msgp.AppendTime(b, r.TimeUTC)
	b = msgp.AppendString(b, "spf")
	b = appendSPFSection(b, r.SPF)
	b = msgp.AppendString(b, "dmarc")
	b = appendDMARCSection(b, r.DMARC)
	b = msgp.AppendString(b, "dkim")
	b = appendDKIMSection(b, r.DKIM)
	b = msgp.AppendString(b, "conclusions")
	b = appendConclusions(b, r.Conclusions)
	b = msgp.AppendString(b, "dnssec_authentic")
	b = msgp.AppendBool(b, r.Authentic)
	b = msgp.AppendString(b, "elapsed_seconds")
	b = msgp.AppendFloat64(b, r.ElapsedSeconds)
	return b, nil
}

// FromMessagePack deserializes a report produced by ToMessagePack.
// Unknown fields are skipped so newer encodings remain readable.
func FromMessagePack(data []byte) (*Report, error) {
	r := &Report{}

	sz, b, err := msgp.ReadMapHeaderBytes(data)
	if err != nil {
		return nil, fmt.Errorf("talon: invalid msgpack report: %w", err)
	}

	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, fmt.Errorf("talon: invalid msgpack report: %w", err)
		}

		switch key {
		case "id":
			r.ID, b, err = msgp.ReadStringBytes(b)
		case "domain":
			r.Domain, b, err = msgp.ReadStringBytes(b)
		case "time_utc":
			r.TimeUTC, b, err = msgp.ReadTimeBytes(b)
			r.TimeUTC = r.TimeUTC.UTC()
		case "spf":
			r.SPF, b, err = readSPFSection(b)
		case "dmarc":
			r.DMARC, b, err = readDMARCSection(b)
		case "dkim":
			r.DKIM, b, err = readDKIMSection(b)
		case "conclusions":
			r.Conclusions, b, err = readConclusions(b)
		case "dnssec_authentic":
			r.Authentic, b, err = msgp.ReadBoolBytes(b)
		case "elapsed_seconds":
			r.ElapsedSeconds, b, err = msgp.ReadFloat64Bytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return nil, fmt.Errorf("talon: invalid msgpack report field %q: %w", key, err)
		}
	}

	return r, nil
}

func appendStrings(b []byte, ss []string) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(ss)))
	for _, s := range ss {
		b = msgp.AppendString(b, s)
	}
	return b
}

func readStrings(b []byte) ([]string, []byte, error) {
	sz, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	if sz == 0 {
		return nil, b, nil
	}
	ss := make([]string, 0, sz)
	for i := uint32(0); i < sz; i++ {
		var s string
		s, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		ss = append(ss, s)
	}
	return ss, b, nil
}

func readStringMap(b []byte) (map[string]string, []byte, error) {
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	m := make(map[string]string, sz)
	for i := uint32(0); i < sz; i++ {
		var k, v string
		k, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		v, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		m[k] = v
	}
	return m, b, nil
}

func appendSPFSection(b []byte, s SPFSection) []byte {
	b = msgp.AppendMapHeader(b, 5)
	b = msgp.AppendString(b, "records")
	b = appendStrings(b, s.Records)
	b = msgp.AppendString(b, "details")
	b = msgp.AppendArrayHeader(b, uint32(len(s.Details)))
	for _, d := range s.Details {
		b = appendSPFRecord(b, d)
	}
	b = msgp.AppendString(b, "resolved_domains")
	b = appendStrings(b, s.ResolvedDomains)
	b = msgp.AppendString(b, "estimated_dns_lookup_count")
	b = msgp.AppendInt(b, s.LookupCount)
	b = msgp.AppendString(b, "errors")
	b = appendStrings(b, s.Errors)
	return b
}

func readSPFSection(b []byte) (SPFSection, []byte, error) {
	var s SPFSection
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return s, b, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return s, b, err
		}
		switch key {
		case "records":
			s.Records, b, err = readStrings(b)
		case "details":
			var n uint32
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				break
			}
			for j := uint32(0); j < n; j++ {
				var d spf.Record
				d, b, err = readSPFRecord(b)
				if err != nil {
					break
				}
				s.Details = append(s.Details, d)
			}
		case "resolved_domains":
			s.ResolvedDomains, b, err = readStrings(b)
		case "estimated_dns_lookup_count":
			s.LookupCount, b, err = msgp.ReadIntBytes(b)
		case "errors":
			s.Errors, b, err = readStrings(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return s, b, err
		}
	}
	return s, b, nil
}

func appendSPFRecord(b []byte, d spf.Record) []byte {
	b = msgp.AppendMapHeader(b, 5)
	b = msgp.AppendString(b, "raw")
	b = msgp.AppendString(b, d.Raw)
	b = msgp.AppendString(b, "includes")
	b = appendStrings(b, d.Includes)
	b = msgp.AppendString(b, "redirect")
	b = msgp.AppendString(b, d.Redirect)
	b = msgp.AppendString(b, "lookup_mechanisms")
	b = appendStrings(b, d.LookupMechanisms)
	b = msgp.AppendString(b, "all_mechanism")
	b = msgp.AppendString(b, d.AllMechanism)
	return b
}

func readSPFRecord(b []byte) (spf.Record, []byte, error) {
	var d spf.Record
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return d, b, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return d, b, err
		}
		switch key {
		case "raw":
			d.Raw, b, err = msgp.ReadStringBytes(b)
		case "includes":
			d.Includes, b, err = readStrings(b)
		case "redirect":
			d.Redirect, b, err = msgp.ReadStringBytes(b)
		case "lookup_mechanisms":
			d.LookupMechanisms, b, err = readStrings(b)
		case "all_mechanism":
			d.AllMechanism, b, err = msgp.ReadStringBytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return d, b, err
		}
	}
	return d, b, nil
}

func appendDMARCSection(b []byte, s DMARCSection) []byte {
	b = msgp.AppendMapHeader(b, 3)
	b = msgp.AppendString(b, "raw")
	b = msgp.AppendString(b, s.Raw)
	b = msgp.AppendString(b, "domain")
	b = msgp.AppendString(b, s.Domain)
	b = msgp.AppendString(b, "tags")
	b = msgp.AppendMapStrStr(b, s.Tags)
	return b
}

func readDMARCSection(b []byte) (DMARCSection, []byte, error) {
	var s DMARCSection
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return s, b, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return s, b, err
		}
		switch key {
		case "raw":
			s.Raw, b, err = msgp.ReadStringBytes(b)
		case "domain":
			s.Domain, b, err = msgp.ReadStringBytes(b)
		case "tags":
			s.Tags, b, err = readStringMap(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return s, b, err
		}
	}
	return s, b, nil
}

func appendDKIMSection(b []byte, s DKIMSection) []byte {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "found_selectors")
	b = msgp.AppendArrayHeader(b, uint32(len(s.FoundSelectors)))
	for _, info := range s.FoundSelectors {
		b = appendSelectorInfo(b, info)
	}
	b = msgp.AppendString(b, "aggressive_checked")
	b = msgp.AppendBool(b, s.AggressiveChecked)
	return b
}

func readDKIMSection(b []byte) (DKIMSection, []byte, error) {
	var s DKIMSection
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return s, b, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return s, b, err
		}
		switch key {
		case "found_selectors":
			var n uint32
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				break
			}
			for j := uint32(0); j < n; j++ {
				var info dkim.SelectorInfo
				info, b, err = readSelectorInfo(b)
				if err != nil {
					break
				}
				s.FoundSelectors = append(s.FoundSelectors, info)
			}
		case "aggressive_checked":
			s.AggressiveChecked, b, err = msgp.ReadBoolBytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return s, b, err
		}
	}
	return s, b, nil
}

func appendSelectorInfo(b []byte, info dkim.SelectorInfo) []byte {
	b = msgp.AppendMapHeader(b, 7)
	b = msgp.AppendString(b, "selector")
	b = msgp.AppendString(b, info.Selector)
	b = msgp.AppendString(b, "name")
	b = msgp.AppendString(b, info.Name)
	b = msgp.AppendString(b, "present")
	b = msgp.AppendBool(b, info.Present)
	b = msgp.AppendString(b, "raw")
	b = msgp.AppendString(b, info.Raw)
	b = msgp.AppendString(b, "key_type")
	b = msgp.AppendString(b, info.KeyType)
	b = msgp.AppendString(b, "key_bits_approx")
	b = msgp.AppendInt(b, info.KeyBitsApprox)
	b = msgp.AppendString(b, "has_public_key")
	b = msgp.AppendBool(b, info.HasPublicKey)
	return b
}

func readSelectorInfo(b []byte) (dkim.SelectorInfo, []byte, error) {
	var info dkim.SelectorInfo
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return info, b, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return info, b, err
		}
		switch key {
		case "selector":
			info.Selector, b, err = msgp.ReadStringBytes(b)
		case "name":
			info.Name, b, err = msgp.ReadStringBytes(b)
		case "present":
			info.Present, b, err = msgp.ReadBoolBytes(b)
		case "raw":
			info.Raw, b, err = msgp.ReadStringBytes(b)
		case "key_type":
			info.KeyType, b, err = msgp.ReadStringBytes(b)
		case "key_bits_approx":
			info.KeyBitsApprox, b, err = msgp.ReadIntBytes(b)
		case "has_public_key":
			info.HasPublicKey, b, err = msgp.ReadBoolBytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return info, b, err
		}
	}
	return info, b, nil
}

func appendConclusions(b []byte, c Conclusions) []byte {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "score")
	b = msgp.AppendInt(b, c.Score)
	b = msgp.AppendString(b, "reasons")
	b = appendStrings(b, c.Reasons)
	return b
}

func readConclusions(b []byte) (Conclusions, []byte, error) {
	var c Conclusions
	sz, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return c, b, err
	}
	for i := uint32(0); i < sz; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return c, b, err
		}
		switch key {
		case "score":
			c.Score, b, err = msgp.ReadIntBytes(b)
		case "reasons":
			c.Reasons, b, err = readStrings(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return c, b, err
		}
	}
	return c, b, nil
}
