// Package search ranks messages against a free-text query at query time.
// There is no persisted index: ranking is a pure function of the query and
// a snapshot of the log, so results can never drift from the live data.
package search

import (
	"chat-core/domain"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// minQueryLength rejects one-character queries outright: they match almost
// everything and help nobody.
const minQueryLength = 2

// typoPrefixLength is how many leading characters two words must share for
// the single-word typo tolerance to consider them related.
const typoPrefixLength = 3

// Results ranks the given messages against query for the requesting
// participant. Candidates are the messages the requester took part in,
// with non-empty content. Exact-phrase matches rank before looser word
// matches; within each tier the most recent message comes first.
func Results(messages []domain.Message, query string, requester domain.ParticipantID) []domain.Message {
	term := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(term)) < minQueryLength {
		return nil
	}
	words := strings.Fields(term)

	candidates := lo.Filter(messages, func(m domain.Message, _ int) bool {
		if m.SenderID != requester && m.RecipientID != requester {
			return false
		}
		return strings.TrimSpace(m.Content) != ""
	})

	matched := lo.Filter(candidates, func(m domain.Message, _ int) bool {
		return matches(strings.ToLower(m.Content), term, words)
	})

	sort.SliceStable(matched, func(i, j int) bool {
		iExact := strings.Contains(strings.ToLower(matched[i].Content), term)
		jExact := strings.Contains(strings.ToLower(matched[j].Content), term)
		if iExact != jExact {
			return iExact
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return matched
}

// matches applies the three match tiers, loosest last:
//  1. the whole trimmed query appears as a substring ("exact phrase")
//  2. multi-word query: every word appears somewhere, any order
//  3. single word of length >= 3: prefix match in either direction,
//     truncated to the first typoPrefixLength characters of the content
//     word (tolerates trailing typos)
func matches(content, term string, words []string) bool {
	if strings.Contains(content, term) {
		return true
	}

	if len(words) > 1 {
		allPresent := lo.EveryBy(words, func(w string) bool {
			return strings.Contains(content, w)
		})
		if allPresent {
			return true
		}
	}

	if len(words) == 1 {
		queryWord := []rune(words[0])
		if len(queryWord) < typoPrefixLength {
			return false
		}
		for _, contentWord := range strings.Fields(content) {
			cw := []rune(contentWord)
			if strings.HasPrefix(string(cw), string(queryWord)) {
				return true
			}
			n := typoPrefixLength
			if len(cw) < n {
				n = len(cw)
			}
			if strings.HasPrefix(string(queryWord), string(cw[:n])) {
				return true
			}
		}
	}
	return false
}
