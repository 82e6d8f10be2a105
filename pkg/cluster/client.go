// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package cluster talks to the Kubernetes API on behalf of the reconciler.
// It resolves client configuration in-cluster or from the local kubeconfig
// and scopes every operation to a single namespace.
package cluster

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	errtypes "github.com/stacklok/secrethive/pkg/errors"
	"github.com/stacklok/secrethive/pkg/labels"
	"github.com/stacklok/secrethive/pkg/logger"
	"github.com/stacklok/secrethive/pkg/secrets"
)

// Client implements secrets.ClusterClient against a real Kubernetes API.
type Client struct {
	clientset kubernetes.Interface
	namespace string
}

var _ secrets.ClusterClient = (*Client)(nil)

// NewClient creates a Client for the given namespace. Client configuration
// is taken from the in-cluster environment when available, otherwise from
// the local kubeconfig. An empty namespace is resolved through the usual
// chain: service account, POD_NAMESPACE, kubeconfig context, "default".
func NewClient(namespace string) (*Client, error) {
	config, err := getKubernetesConfig()
	if err != nil {
		return nil, errtypes.NewClusterError("failed to create kubernetes config", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, errtypes.NewClusterError("failed to create kubernetes client", err)
	}

	if namespace == "" {
		namespace = GetCurrentNamespace()
	}

	return NewClientWithClientset(clientset, namespace), nil
}

// NewClientWithClientset creates a Client with the provided clientset.
// This is useful for testing with a fake clientset.
func NewClientWithClientset(clientset kubernetes.Interface, namespace string) *Client {
	return &Client{
		clientset: clientset,
		namespace: namespace,
	}
}

// getKubernetesConfig returns a Kubernetes REST config
func getKubernetesConfig() (*rest.Config, error) {
	// Try in-cluster config first
	config, err := rest.InClusterConfig()
	if err == nil {
		return config, nil
	}

	// Fall back to kubeconfig
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)
	return kubeConfig.ClientConfig()
}

// Namespace returns the namespace this client operates in.
func (c *Client) Namespace() string {
	return c.namespace
}

// GetSecret returns the observed state of the named secret. A missing
// secret is reported as absent, not as an error.
func (c *Client) GetSecret(ctx context.Context, name string) (*secrets.RemoteSecretState, error) {
	secret, err := c.clientset.CoreV1().Secrets(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return &secrets.RemoteSecretState{Name: name, Absent: true}, nil
	}
	if err != nil {
		return nil, errtypes.NewClusterError(fmt.Sprintf("failed to get secret %s/%s", c.namespace, name), err)
	}

	return &secrets.RemoteSecretState{Name: name, Data: secret.Data}, nil
}

// ApplySecret replaces the secret's full contents with the spec's data,
// creating the secret if it does not exist. Existing type and labels not
// owned by secrethive are preserved; the managed labels are always stamped.
// Both create/update races are handled by retrying the losing side, so a
// repeated or concurrent apply converges rather than fails.
func (c *Client) ApplySecret(ctx context.Context, spec *secrets.SecretSpec) error {
	existing, err := c.clientset.CoreV1().Secrets(c.namespace).Get(ctx, spec.Name, metav1.GetOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return errtypes.NewClusterError(fmt.Sprintf("failed to get secret %s/%s", c.namespace, spec.Name), err)
	}

	if apierrors.IsNotFound(err) {
		_, err = c.clientset.CoreV1().Secrets(c.namespace).Create(ctx, c.newSecret(spec), metav1.CreateOptions{})
		if err == nil {
			return nil
		}
		if !apierrors.IsAlreadyExists(err) {
			return errtypes.NewClusterError(fmt.Sprintf("failed to create secret %s/%s", c.namespace, spec.Name), err)
		}
		// Another writer created it between the read and the write.
		// Re-read and replace what exists instead.
		logger.Debugw("create raced another writer, updating instead", "secret", spec.Name)
		existing, err = c.clientset.CoreV1().Secrets(c.namespace).Get(ctx, spec.Name, metav1.GetOptions{})
		if err != nil {
			return errtypes.NewClusterError(fmt.Sprintf("failed to get secret %s/%s", c.namespace, spec.Name), err)
		}
	}

	updated := existing.DeepCopy()
	updated.Data = spec.Data()
	updated.StringData = nil
	if updated.Labels == nil {
		updated.Labels = make(map[string]string)
	}
	labels.AddStandardLabels(updated.Labels, string(spec.SourceKind))

	_, err = c.clientset.CoreV1().Secrets(c.namespace).Update(ctx, updated, metav1.UpdateOptions{})
	if apierrors.IsNotFound(err) {
		// Deleted between the read and the write; create it fresh.
		logger.Debugw("secret deleted mid-apply, creating instead", "secret", spec.Name)
		_, err = c.clientset.CoreV1().Secrets(c.namespace).Create(ctx, c.newSecret(spec), metav1.CreateOptions{})
	}
	if err != nil {
		return errtypes.NewClusterError(fmt.Sprintf("failed to update secret %s/%s", c.namespace, spec.Name), err)
	}
	return nil
}

// ListManagedSecrets returns the names of secrets carrying the managed-by
// label, sorted for deterministic output.
func (c *Client) ListManagedSecrets(ctx context.Context) ([]string, error) {
	list, err := c.clientset.CoreV1().Secrets(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labels.FormatManagedFilter(),
	})
	if err != nil {
		return nil, errtypes.NewClusterError(fmt.Sprintf("failed to list secrets in %s", c.namespace), err)
	}

	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		names = append(names, item.Name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSecret removes the named secret. A secret that is already gone is
// not an error.
func (c *Client) DeleteSecret(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().Secrets(c.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return errtypes.NewClusterError(fmt.Sprintf("failed to delete secret %s/%s", c.namespace, name), err)
	}
	return nil
}

// newSecret builds the Secret object for a spec being created from scratch.
func (c *Client) newSecret(spec *secrets.SecretSpec) *corev1.Secret {
	secretLabels := make(map[string]string)
	labels.AddStandardLabels(secretLabels, string(spec.SourceKind))

	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: c.namespace,
			Labels:    secretLabels,
		},
		Type: corev1.SecretTypeOpaque,
		Data: spec.Data(),
	}
}
