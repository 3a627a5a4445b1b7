package alert

import (
	"fmt"
	"strings"

	"github.com/nao1215/darkhound/internal/model"
)

// subjectPrefix starts every alert subject so destination mailboxes
// can filter on it.
const subjectPrefix = "DarkHound Leak Alert: "

// redactedPlaceholder stands in for the captured context in the alert
// body. The context itself never leaves the local store.
const redactedPlaceholder = "[context redacted]"

// Subject builds the alert subject line for a finding.
func Subject(finding model.Finding) string {
	return subjectPrefix + model.Truncate(finding.Indicator, model.MaxIndicatorLength)
}

// Body builds the redacted alert body for a finding.
//
// The body names the indicator and the risk score, and marks where the
// context would be. It must never contain the finding's Context or its
// extracted entities: mail relays log, forward, and archive.
func Body(finding model.Finding) string {
	var sb strings.Builder

	sb.WriteString("A monitored indicator was detected in dark web content.\n\n")
	fmt.Fprintf(&sb, "Indicator:  %s\n", model.Truncate(finding.Indicator, model.MaxIndicatorLength))
	fmt.Fprintf(&sb, "Risk score: %d/%d\n", model.ClampRiskScore(finding.RiskScore), model.MaxRiskScore)
	fmt.Fprintf(&sb, "Context:    %s\n", redactedPlaceholder)
	sb.WriteString("\nFull details are available in the local DarkHound dashboard.\n")

	return sb.String()
}

// message assembles the complete RFC 5322 message bytes.
func message(from, to string, finding model.Finding) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", Subject(finding))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(Body(finding))

	return []byte(sb.String())
}
