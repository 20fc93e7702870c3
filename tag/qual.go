// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package tag

import (
	"math"
	"sort"
)

// This file contains qual phred-math routines.

// All functions here assume input qual scores are never larger than
// (nQual - 1); larger scores are clamped.
const nQual = 96

// phredOffset is the ASCII offset of Sanger-encoded quality characters.
const phredOffset = 33

// callProbs[q] is the probability that a base call with phred score q is
// correct: 1 - 10^(-q/10). callProbs[0] is 0, so a zero-score position never
// counts as a confident comparison.
var callProbs [nQual]float64

func init() {
	for q := 1; q < nQual; q++ {
		callProbs[q] = 1.0 - math.Exp(float64(q)*(-0.1*math.Ln10))
	}
}

// phredScore decodes one Phred+33 quality character. Characters below the
// offset decode to zero rather than wrapping.
func phredScore(ch byte) byte {
	if ch < phredOffset {
		return 0
	}
	q := ch - phredOffset
	if q >= nQual {
		q = nQual - 1
	}
	return q
}

// phredChar encodes a phred score as a Phred+33 character.
func phredChar(q int) byte {
	if q < 0 {
		q = 0
	}
	if q >= nQual {
		q = nQual - 1
	}
	return byte(q) + phredOffset
}

// callProb returns the probability that a base call with the given phred
// score is correct.
func callProb(q byte) float64 {
	if q >= nQual {
		q = nQual - 1
	}
	return callProbs[q]
}

// medianScore reduces a set of phred scores to the element at index
// ⌊(n-1)/2⌋ of the ascending-sorted scores: the only score for n=1, the lower
// of the two for n=2, the true middle for odd n. scores is sorted in place.
func medianScore(scores []byte) byte {
	sort.Slice(scores, func(i, j int) bool { return scores[i] < scores[j] })
	return scores[(len(scores)-1)/2]
}
