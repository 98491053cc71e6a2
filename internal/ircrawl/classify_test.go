package ircrawl

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		href    string
		context string
		want    Classification
	}{
		{
			name: "quarter and year adjacent",
			text: "Q3-2022 Results",
			href: "/docs/report.pdf",
			want: Classification{Type: ReportQuarterly, Year: 2022, Quarter: 3},
		},
		{
			name: "annual keyword beats quarter",
			text: "Full Year and Q4 2023 Earnings",
			href: "/docs/fy.pdf",
			want: Classification{Type: ReportAnnual, Year: 2023, Quarter: 4},
		},
		{
			name: "year from filename only",
			text: "Report",
			href: "https://example.com/archive/2021-annual-report.pdf",
			want: Classification{Type: ReportAnnual, Year: 2021},
		},
		{
			name: "upload date path is not a year",
			text: "Annual Report",
			href: "/wp-content/uploads/2019/03/ar.pdf",
			want: Classification{Type: ReportAnnual},
		},
		{
			name: "quarter phrase",
			text: "Second Quarter 2024 Shareholder Letter",
			href: "/letters/letter.pdf",
			want: Classification{Type: ReportQuarterly, Year: 2024, Quarter: 2},
		},
		{
			name: "quarter from filename",
			text: "Earnings release",
			href: "/files/2020_Q1_release.pdf",
			want: Classification{Type: ReportQuarterly, Year: 2020, Quarter: 1},
		},
		{
			name: "adjacent year beats bare year in text",
			text: "2020 restated Q2 2021",
			href: "/r.pdf",
			want: Classification{Type: ReportQuarterly, Year: 2021, Quarter: 2},
		},
		{
			name:    "context consulted last",
			text:    "Download",
			href:    "/files/doc.pdf",
			context: "quarterly-results Q1 2021",
			want:    Classification{Type: ReportQuarterly, Year: 2021, Quarter: 1},
		},
		{
			name:    "anchor year wins over context year",
			text:    "Annual Report 2018",
			href:    "/ar.pdf",
			context: "archive 2015",
			want:    Classification{Type: ReportAnnual, Year: 2018},
		},
		{
			name:    "filename year wins over context years",
			text:    "Annual Report",
			href:    "/files/ar-2019.pdf",
			context: "Reports Q1 2024 archive 2024",
			want:    Classification{Type: ReportAnnual, Year: 2019, Quarter: 1},
		},
		{
			name:    "anchor year wins over context quarter-year",
			text:    "Results 2021",
			href:    "/r.pdf",
			context: "Q3 2023",
			want:    Classification{Type: ReportQuarterly, Year: 2021, Quarter: 3},
		},
		{
			name: "10-k is annual",
			text: "Form 10-K 2022",
			href: "/sec/filing.pdf",
			want: Classification{Type: ReportAnnual, Year: 2022},
		},
		{
			name: "10-q is quarterly",
			text: "Form 10-Q",
			href: "/sec/filing.pdf",
			want: Classification{Type: ReportQuarterly},
		},
		{
			name: "years outside the window are ignored",
			text: "Financial statements 2009",
			href: "/fs.pdf",
			want: Classification{Type: ReportOther},
		},
		{
			name: "nothing recognisable",
			text: "Investor Presentation",
			href: "/presentation.pdf",
			want: Classification{Type: ReportOther},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text, tt.href, tt.context)
			if got != tt.want {
				t.Fatalf("Classify(%q, %q, %q) = %+v, want %+v", tt.text, tt.href, tt.context, got, tt.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify("Q4 2023 Earnings Release", "/q4-2023.pdf", "results")
	for i := 0; i < 5; i++ {
		if got := Classify("Q4 2023 Earnings Release", "/q4-2023.pdf", "results"); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestQuarterRulePriority(t *testing.T) {
	// Anchor text outranks the filename.
	if got := Classify("Q2 results", "/files/q4-deck.pdf", "").Quarter; got != 2 {
		t.Fatalf("expected quarter 2 from anchor text, got %d", got)
	}
	// Filename outranks context.
	if got := Classify("Results", "/files/q4-deck.pdf", "Q1").Quarter; got != 4 {
		t.Fatalf("expected quarter 4 from filename, got %d", got)
	}
}

func TestReportTitle(t *testing.T) {
	tests := []struct {
		text string
		url  string
		want string
	}{
		{"Annual Report 2023", "https://example.com/ar.pdf", "Annual Report 2023"},
		{"", "https://example.com/docs/FY2023%20Annual.pdf", "FY2023 Annual"},
		{"", "https://example.com/docs/q1.PDF", "q1"},
		{"", "https://example.com/", "Report"},
	}
	for _, tt := range tests {
		if got := reportTitle(tt.text, tt.url); got != tt.want {
			t.Fatalf("reportTitle(%q, %q) = %q, want %q", tt.text, tt.url, got, tt.want)
		}
	}
}
