// Package gsm implements a settings.Source backed by Google Cloud Secret
// Manager.
//
// Each Fetch authenticates with ambient credentials (Application Default
// Credentials), then reads the latest version of one secret per declared field,
// named after the field's alias or, failing that, its name. The source never
// writes to the secret store.
//
// Failure handling is deliberately narrow:
//
//   - no usable credentials or project: the source is degraded and
//     contributes nothing for this pass
//   - NotFound or PermissionDenied for a secret: that field is absent
//   - anything else: the error is returned and the pass aborts
//
// A client is created and closed on every Fetch; neither the client nor the
// secret values are cached between passes.
package gsm
