package lexical

// Overlap scores how much of the query's content vocabulary appears in the
// document, in [0,1]. Used as the sparse half of the hybrid retrieval merge.
// A query with no content terms scores 0 against everything.
func Overlap(query, document string) float64 {
	qTerms := ContentTerms(query)
	if len(qTerms) == 0 {
		return 0
	}
	dTerms := ContentTerms(document)

	matched := 0
	for t := range qTerms {
		if dTerms[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(qTerms))
}

// EntailmentStrength scores how strongly a passage lexically entails a
// claim: the fraction of the claim's content terms present in the passage.
// This is deliberately the same recall direction as Overlap but named for
// its role in verification: the claim must be covered by the passage, not
// the other way around.
func EntailmentStrength(claim, passage string) float64 {
	return Overlap(claim, passage)
}
