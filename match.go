// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package harc

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Selector matches archive entries against user patterns. Patterns without a
// directory part match entry names at any depth; patterns with a directory
// part are anchored at the archive root.
type Selector struct {
	matcher *pathrules.Matcher
}

// NewSelector compiles patterns into an entry selector. Empty input selects everything.
func NewSelector(patterns []string) (*Selector, error) {
	rules := includeRules(normalizeSelectorPatterns(patterns)...)
	if len(rules) == 0 {
		rules = includeRules(DefaultPattern)
	}

	matcher, err := newMatcher(rules)
	if err != nil {
		return nil, err
	}

	return &Selector{matcher: matcher}, nil
}

// Match reports whether entry is selected.
func (s *Selector) Match(entry *Entry) bool {
	if s == nil || s.matcher == nil {
		return true
	}

	candidate := NormalizePath(entry.FullPath())
	if candidate == "" {
		return false
	}

	return s.matcher.Included(candidate, false)
}

// nameMatcher matches bare directory entry names during traversal.
type nameMatcher struct {
	matcher *pathrules.Matcher
}

// newNameMatcher compiles the name part of one pattern.
func newNameMatcher(pattern string) (*nameMatcher, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}

	matcher, err := newMatcher(includeRules(pattern))
	if err != nil {
		return nil, err
	}

	return &nameMatcher{matcher: matcher}, nil
}

// Match reports whether name matches the pattern.
func (m *nameMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	return m.matcher.Included(name, false)
}

// newMatcher builds a pathrules matcher with platform case folding.
func newMatcher(rules []pathrules.Rule) (*pathrules.Matcher, error) {
	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		CaseInsensitive: caseInsensitiveNames,
		DefaultAction:   pathrules.ActionExclude,
	})
	if err != nil {
		return nil, fmt.Errorf("compile patterns: %w", err)
	}

	return matcher, nil
}

// normalizeSelectorPatterns converts user patterns to matcher form and drops empty ones.
func normalizeSelectorPatterns(patterns []string) []string {
	normalized := make([]string, 0, len(patterns))
	for _, raw := range patterns {
		pattern := NormalizePath(raw)
		if pattern == "" {
			continue
		}

		if strings.Contains(pattern, "/") {
			pattern = "/" + pattern
		}

		normalized = append(normalized, pattern)
	}

	return normalized
}

// includeRules builds include rules from raw patterns.
func includeRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	return rules
}
