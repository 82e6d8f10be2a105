// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"fmt"
	"os"
	"strings"

	"k8s.io/client-go/tools/clientcmd"
)

const (
	// defaultNamespace is the fallback when no other source names one
	defaultNamespace = "default"
	// serviceAccountNamespacePath is where the kubelet mounts the pod's namespace
	serviceAccountNamespacePath = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	// podNamespaceEnv is the environment variable injected via the downward API
	podNamespaceEnv = "POD_NAMESPACE"
)

// GetCurrentNamespace determines the namespace to reconcile into when none
// is configured, trying multiple sources in order and falling back to
// "default" if none succeed.
func GetCurrentNamespace() string {
	// Method 1: the service account namespace file, present in-cluster
	if ns, err := namespaceFromServiceAccountPath(serviceAccountNamespacePath); err == nil {
		return ns
	}

	// Method 2: the downward-API environment variable
	if ns, err := namespaceFromEnvVar(podNamespaceEnv); err == nil {
		return ns
	}

	// Method 3: the current kubeconfig context
	if ns, err := namespaceFromKubeConfig(); err == nil {
		return ns
	}

	return defaultNamespace
}

// namespaceFromServiceAccountPath reads the namespace from a service account
// mount. Thin I/O wrapper; the logic lives in parseNamespaceFile.
func namespaceFromServiceAccountPath(path string) (string, error) {
	//nolint:gosec // G304: the path is configurable for testing
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read namespace file: %w", err)
	}
	return parseNamespaceFile(data)
}

// parseNamespaceFile parses the namespace out of service account file data.
func parseNamespaceFile(data []byte) (string, error) {
	// The kubelet writes the file without a trailing newline; trim anyway in
	// case the file was created by hand. Only newlines are trimmed so a
	// namespace is never silently rewritten.
	ns := strings.TrimRight(string(data), "\n\r")
	if ns == "" {
		return "", fmt.Errorf("namespace file is empty")
	}
	return ns, nil
}

// namespaceFromEnvVar reads the namespace from an environment variable.
func namespaceFromEnvVar(envVar string) (string, error) {
	ns := os.Getenv(envVar)
	if ns == "" {
		return "", fmt.Errorf("%s environment variable not set", envVar)
	}
	return ns, nil
}

// namespaceFromKubeConfig reads the namespace set on the current kubeconfig
// context. Thin I/O wrapper; the logic lives in namespaceFromContext.
func namespaceFromKubeConfig() (string, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)
	return namespaceFromContext(kubeConfig)
}

// namespaceFromContext extracts the namespace from a kubeconfig's current
// context. Pure logic, testable with in-memory configs.
func namespaceFromContext(kubeConfig clientcmd.ClientConfig) (string, error) {
	rawConfig, err := kubeConfig.RawConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	currentContext := rawConfig.CurrentContext
	if currentContext == "" {
		return "", fmt.Errorf("no current context set in kubeconfig")
	}

	contextConfig, exists := rawConfig.Contexts[currentContext]
	if !exists {
		return "", fmt.Errorf("current context %q not found in kubeconfig", currentContext)
	}

	ns := strings.TrimSpace(contextConfig.Namespace)
	if ns == "" {
		return "", fmt.Errorf("no namespace set in current context %q", currentContext)
	}

	return ns, nil
}
