// Package alert delivers leak notifications over SMTP.
//
// Alert bodies are built for untrusted mail infrastructure: they carry
// the indicator, the risk score, and a redaction placeholder, never the
// captured context or extracted entities. The leaked material itself
// only lives in the local store.
//
// Design decision: the destination address is validated when the
// dispatcher is built, not per dispatch. A misconfigured destination
// fails the whole monitor at startup instead of silently dropping every
// alert mid-cycle.
package alert
