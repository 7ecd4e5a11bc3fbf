package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluation stage.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one requirement check.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a failed requirement.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a failed optional requirement, which never fails the
// stage.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a scorecard to JUnit XML format: one testsuite per
// stage, one testcase per requirement.
func ConvertToJUnit(card *models.Scorecard) *JUnitTestSuites {
	suites := &JUnitTestSuites{
		Time: float64(card.DurationMs) / 1000.0,
	}

	for _, report := range card.Reports {
		// Timed-out checks count as errors, not failures: the requirement was
		// never fully evaluated.
		var timeouts int
		for _, oc := range report.Errors() {
			if oc.Result.TimedOut {
				timeouts++
			}
		}

		suite := JUnitTestSuite{
			Name:      string(report.Stage),
			Tests:     len(report.Outcomes),
			Failures:  len(report.Errors()) - timeouts,
			Errors:    timeouts,
			Skipped:   len(report.Warnings()),
			Time:      float64(report.DurationMs) / 1000.0,
			Timestamp: card.Timestamp.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "entry", Value: card.Entry},
				{Name: "run_id", Value: card.RunID},
				{Name: "stage_score", Value: fmt.Sprintf("%d", card.StageScores[report.Stage])},
			},
		}

		for _, outcome := range report.Outcomes {
			suite.TestCases = append(suite.TestCases, convertOutcome(report.Stage, outcome))
		}

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Errors += suite.Errors
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	return suites
}

func convertOutcome(stage models.Stage, outcome models.RequirementOutcome) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      outcome.Name,
		Classname: string(stage),
		Time:      float64(outcome.Result.DurationMs) / 1000.0,
	}

	if outcome.Result.Passed {
		return tc
	}

	if outcome.Optional {
		tc.Skipped = &JUnitSkipped{Message: outcome.Result.Message}
		return tc
	}

	tc.Failure = &JUnitFailure{
		Message: outcome.Result.Message,
		Type:    failureType(outcome.Result),
		Body:    failureBody(outcome.Result),
	}
	return tc
}

func failureType(res models.CheckResult) string {
	if res.TimedOut {
		return "Timeout"
	}
	return "RequirementFailure"
}

func failureBody(res models.CheckResult) string {
	var body string
	if res.ExitCode != nil {
		body += fmt.Sprintf("exit code: %d\n", *res.ExitCode)
	}
	if res.Dir != "" {
		body += fmt.Sprintf("dir: %s\n", res.Dir)
	}
	if res.Stdout != "" {
		body += "stdout:\n" + res.Stdout + "\n"
	}
	if res.Stderr != "" {
		body += "stderr:\n" + res.Stderr + "\n"
	}
	return body
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(card *models.Scorecard, path string) error {
	suites := ConvertToJUnit(card)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
