package ircrawl

import "strings"

type ReportType string

const (
	ReportAnnual    ReportType = "annual"
	ReportQuarterly ReportType = "quarterly"
	ReportOther     ReportType = "other"
)

// User-facing failure messages carried in CrawlResult.Error.
const (
	MsgBlocked  = "This site blocks automated access. Try uploading a PDF directly instead."
	MsgNotFound = "Could not find investor relations page"
	MsgFailed   = "Failed to crawl investor relations page"
)

// Request identifies what to crawl. Website or IRPageURL must be set;
// IRPageURL wins when both are.
type Request struct {
	Website   string `json:"website"`
	Ticker    string `json:"ticker"`
	IRPageURL string `json:"irPageUrl"`
}

func (r Request) normalized() Request {
	return Request{
		Website:   strings.TrimSpace(r.Website),
		Ticker:    strings.TrimSpace(r.Ticker),
		IRPageURL: strings.TrimSpace(r.IRPageURL),
	}
}

// CacheKey is the first non-empty of IRPageURL, Ticker, Website.
func (r Request) CacheKey() string {
	n := r.normalized()
	switch {
	case n.IRPageURL != "":
		return n.IRPageURL
	case n.Ticker != "":
		return n.Ticker
	default:
		return n.Website
	}
}

// ReportCandidate is a PDF link found on a page, before classification.
type ReportCandidate struct {
	URL                string
	Href               string
	AnchorText         string
	SurroundingContext string
}

// ClassifiedReport is a report document. Year and Quarter are zero when unknown.
type ClassifiedReport struct {
	Title   string     `json:"title" yaml:"title"`
	URL     string     `json:"url" yaml:"url"`
	Type    ReportType `json:"type" yaml:"type"`
	Year    int        `json:"year,omitempty" yaml:"year,omitempty"`
	Quarter int        `json:"quarter,omitempty" yaml:"quarter,omitempty"`
}

type CrawlResult struct {
	IRPageURL string             `json:"irPageUrl" yaml:"irPageUrl"`
	Reports   []ClassifiedReport `json:"reports" yaml:"reports"`
	Error     string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func failureResult(msg string) CrawlResult {
	return CrawlResult{IRPageURL: "", Reports: []ClassifiedReport{}, Error: msg}
}
