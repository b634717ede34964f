package checks

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/seoscan/internal/model"
)

// Content quality thresholds.
const (
	// veryThinContentWords is the word count below which content is
	// likely to be penalized outright.
	veryThinContentWords = 100

	// thinContentWords is the recommended minimum word count.
	thinContentWords = 300

	// maxAvgSentenceLength is the readable average sentence length.
	maxAvgSentenceLength = 25

	// maxAvgWordLength is the accessible average word length.
	maxAvgWordLength = 6

	// difficultReadingScore is the Flesch reading ease score below
	// which content is considered hard to read.
	difficultReadingScore = 30

	// maxHeadingRatio is the tolerated share of heading words in the
	// page text.
	maxHeadingRatio = 0.3

	// stuffingMinWordLength excludes short words from keyword
	// frequency analysis.
	stuffingMinWordLength = 3

	// stuffingTopWords is how many of the most frequent words are
	// examined for stuffing.
	stuffingTopWords = 10

	// stuffingFrequency is the single-word frequency above which
	// keyword stuffing is suspected.
	stuffingFrequency = 0.05
)

// sentenceSplitRe splits text into sentences on terminal punctuation.
var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// wordPunctuation is stripped from word boundaries before frequency
// and syllable analysis.
const wordPunctuation = ".,!?;:"

// ContentChecker analyzes content quality: length, readability,
// heading balance, and keyword stuffing.
type ContentChecker struct{}

// NewContentChecker creates the content quality checker.
func NewContentChecker() *ContentChecker {
	return &ContentChecker{}
}

// Name implements Checker.
func (c *ContentChecker) Name() string {
	return "content"
}

// Check implements Checker.
func (c *ContentChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	var issues []model.Issue
	issues = append(issues, c.checkLength(data)...)
	issues = append(issues, c.checkReadability(data)...)
	issues = append(issues, c.checkHeadingRatio(data)...)
	issues = append(issues, c.checkKeywordStuffing(data)...)
	return issues, nil
}

// checkLength flags thin content. Below the very-thin threshold only
// the stronger issue is reported.
func (c *ContentChecker) checkLength(data *PageData) []model.Issue {
	wordCount := len(strings.Fields(data.Doc.Text))

	switch {
	case wordCount < veryThinContentWords:
		return []model.Issue{model.NewIssueDetail(data.Page.URL, "very_thin_content", model.SeverityHigh,
			fmt.Sprintf("Page has only %d words. Very thin content may be penalized.", wordCount))}
	case wordCount < thinContentWords:
		return []model.Issue{model.NewIssueDetail(data.Page.URL, "thin_content", model.SeverityMedium,
			fmt.Sprintf("Page has only %d words. Aim for at least 300 words.", wordCount))}
	}
	return nil
}

// checkReadability applies simple readability metrics.
func (c *ContentChecker) checkReadability(data *PageData) []model.Issue {
	words := strings.Fields(data.Doc.Text)
	sentences := splitSentences(data.Doc.Text)
	if len(words) == 0 || len(sentences) == 0 {
		return nil
	}

	var issues []model.Issue
	pageURL := data.Page.URL

	avgSentenceLength := float64(len(words)) / float64(len(sentences))
	if avgSentenceLength > maxAvgSentenceLength {
		issues = append(issues, model.NewIssueDetail(pageURL, "long_sentences", model.SeverityLow,
			fmt.Sprintf("Average sentence length is %.1f words. Consider shorter sentences for better readability.", avgSentenceLength)))
	}

	totalWordLength := 0
	for _, word := range words {
		totalWordLength += utf8.RuneCountInString(word)
	}
	avgWordLength := float64(totalWordLength) / float64(len(words))
	if avgWordLength > maxAvgWordLength {
		issues = append(issues, model.NewIssueDetail(pageURL, "complex_vocabulary", model.SeverityInfo,
			fmt.Sprintf("Average word length is %.1f characters. Consider simpler words for broader accessibility.", avgWordLength)))
	}

	// The formula is meaningless on a handful of words; only score
	// pages with substantive content.
	if len(words) >= veryThinContentWords {
		if score := fleschReadingEase(words, len(sentences)); score < difficultReadingScore {
			issues = append(issues, model.NewIssueDetail(pageURL, "difficult_reading", model.SeverityInfo,
				fmt.Sprintf("Flesch reading ease score is %.1f. Content may be hard to read.", score)))
		}
	}

	return issues
}

// checkHeadingRatio flags pages whose text is mostly headings.
func (c *ContentChecker) checkHeadingRatio(data *PageData) []model.Issue {
	totalWords := len(strings.Fields(data.Doc.Text))
	if totalWords == 0 {
		return nil
	}

	headingWords := 0
	for _, heading := range data.Doc.Headings {
		headingWords += len(strings.Fields(heading))
	}

	ratio := float64(headingWords) / float64(totalWords)
	if ratio <= maxHeadingRatio {
		return nil
	}
	return []model.Issue{model.NewIssueDetail(data.Page.URL, "high_heading_ratio", model.SeverityLow,
		fmt.Sprintf("%.1f%% of content is headings. Ensure sufficient body content.", ratio*100))}
}

// checkKeywordStuffing flags words that dominate the page text.
func (c *ContentChecker) checkKeywordStuffing(data *PageData) []model.Issue {
	var words []string
	for _, word := range strings.Fields(data.Doc.Text) {
		if utf8.RuneCountInString(word) > stuffingMinWordLength {
			words = append(words, strings.Trim(strings.ToLower(word), wordPunctuation))
		}
	}
	if len(words) == 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, word := range words {
		if counts[word] == 0 {
			firstSeen[word] = i
			order = append(order, word)
		}
		counts[word]++
	}

	// Most frequent first; first occurrence breaks ties so the output
	// is stable.
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	if len(order) > stuffingTopWords {
		order = order[:stuffingTopWords]
	}

	var issues []model.Issue
	total := len(words)
	for _, word := range order {
		frequency := float64(counts[word]) / float64(total)
		if frequency > stuffingFrequency {
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "potential_keyword_stuffing", model.SeverityMedium,
				fmt.Sprintf("Word '%s' appears %d times (%.1f%% of content). May be keyword stuffing.",
					word, counts[word], frequency*100)))
		}
	}
	return issues
}

// splitSentences splits text on terminal punctuation, dropping empty
// fragments.
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// fleschReadingEase computes the Flesch reading ease score (0-100,
// higher reads easier) using a simplified syllable count.
func fleschReadingEase(words []string, sentenceCount int) float64 {
	if len(words) == 0 || sentenceCount == 0 {
		return 0
	}

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(sentenceCount)) -
		84.6*(float64(syllables)/float64(len(words)))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countSyllables estimates syllables by counting vowel groups, with a
// silent trailing 'e' adjustment. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.Trim(strings.ToLower(word), wordPunctuation)

	count := 0
	previousWasVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !previousWasVowel {
			count++
		}
		previousWasVowel = isVowel
	}

	if strings.HasSuffix(word, "e") {
		count--
	}
	if count < 1 {
		return 1
	}
	return count
}
