package textproc

import "strings"

// englishStopWords is the embedded closed list of English stop-words.
// Kept static so normalization needs no external corpus download.
const englishStopWords = `a about above after again against all am an and
any are aren arent as at be because been before being below between both
but by can cannot could couldn couldnt did didn didnt do does doesn
doesnt doing don dont down during each few for from further had hadn
hadnt has hasn hasnt have haven havent having he her here hers herself
him himself his how i if in into is isn isnt it its itself just ll me
might mightn mightnt more most mustn mustnt my myself needn neednt no
nor not now of off on once only or other our ours ourselves out over own
re same shan shant she should shouldn shouldnt so some such than that
the their theirs them themselves then there these they this those
through to too under until up ve very was wasn wasnt we were weren
werent what when where which while who whom why will with won wont
would wouldn wouldnt you your yours yourself yourselves`

func stopWordSet() map[string]struct{} {
	words := strings.Fields(englishStopWords)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
