package store

import "github.com/Harshitk-cp/ghostprotocol/internal/domain"

func domainsToStrings(ds []domain.KnowledgeDomain) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

func stringsToDomains(ss []string) []domain.KnowledgeDomain {
	out := make([]domain.KnowledgeDomain, len(ss))
	for i, s := range ss {
		out[i] = domain.KnowledgeDomain(s)
	}
	return out
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
