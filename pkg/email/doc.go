// Package email is the fallback delivery path for queued notifications.
//
// When the push webhook rejects an item, the dispatcher hands it to Sink,
// which renders an email and sends it through an EmailSender:
//
//   - NewPostmarkClient sends through Postmark's transactional API
//   - NewDevSender writes .html and .json files to a directory, for local runs
//
// # Message format
//
// Item contents that decode as JSON with a "title" field are treated as a
// Notification: title becomes the subject, short_html the body and
// short_text the plain-text part. Any other contents are sent verbatim,
// HTML-escaped inside a <pre> block, under the subject
// "Queued notification <item id>". Bodies are rendered with templ through
// the templates subpackage.
//
// # Usage
//
//	sink, err := email.NewSinkFromConfig(email.Config{
//		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:          "queue@example.com",
//		NotifyTo:             "oncall@example.com",
//	})
//	dispatcher, err := queue.NewDispatcher(store, webhookSink, queue.WithFallback(sink))
//
// # Error Handling
//
// ErrInvalidConfig and ErrInvalidParams are returned before anything is
// sent; ErrFailedToSendEmail wraps provider and filesystem failures. All can
// be checked with errors.Is.
package email
