package kubeconfig

import "strings"

// RewriteEndpoint replaces every occurrence of privateAddress with
// publicAddress in the credential content and reports how many were
// replaced. The endpoint may appear in multiple fields (server URL,
// TLS server name), so a first-match rewrite is not enough.
func RewriteEndpoint(content, privateAddress, publicAddress string) (string, int) {
	count := strings.Count(content, privateAddress)
	if count == 0 {
		return content, 0
	}
	return strings.ReplaceAll(content, privateAddress, publicAddress), count
}
