package models

// Notification topics delivered over the per-user notification channel.
const (
	// TopicJobAdvertised carries a [JobAdvertisement] to every qualified
	// encoder of the job's secret.
	TopicJobAdvertised = "job.advertised"

	// TopicJobAborted carries an [AbortNotice] broadcast to all peers so
	// that anyone still working on the token stops.
	TopicJobAborted = "job.aborted"
)

// Notice is a single message delivered over the notification channel.
// Payload is one of the typed notice bodies below, chosen by Topic.
type Notice struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// JobAdvertisement asks a qualified encoder to produce a new ciphertext
// copy of a secret for the target user, encrypted with TargetPublicKey.
type JobAdvertisement struct {
	// Token identifies the job; the encoder echoes it back on fulfillment.
	Token string `json:"token"`

	// SecretID tells the encoder which of its own ciphertext copies to
	// decrypt and re-encrypt.
	SecretID int64 `json:"secretId"`

	// TargetPublicKey is the DER-encoded key to encrypt the new copy with
	// (the snapshot stored on the job, not the user's live key).
	TargetPublicKey []byte `json:"targetPublicKey"`
}

// AbortNotice tells peers that the job identified by Token is retired
// (fulfilled or aborted) and any in-progress work on it should stop.
type AbortNotice struct {
	Token string `json:"token"`
}

// FulfillRequest is the body of a job fulfillment call: the freshly
// produced ciphertext for the job's target user.
type FulfillRequest struct {
	EncryptedSecret []byte `json:"encryptedSecret"`
}

// FulfillResponse reports the outcome of a fulfillment call.
type FulfillResponse struct {
	Status string `json:"status"`
}
