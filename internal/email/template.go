package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/newshub/newshub/internal/models"
)

// RenderDigest renders a digest into the HTML and plain-text bodies of a
// digest email.
func RenderDigest(digest models.Digest, recipientName string, date time.Time) (html string, text string, err error) {
	data := digestTemplateData{
		Digest:    digest,
		Recipient: recipientName,
		Date:      date.Format("Monday, January 2, 2006"),
	}

	var b strings.Builder
	if err := digestHTML.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("failed to render digest HTML: %w", err)
	}

	return b.String(), renderDigestText(data), nil
}

// DigestSubject builds the subject line for a digest email.
func DigestSubject(date time.Time) string {
	return fmt.Sprintf("Your NewsHub Digest - %s", date.Format("Jan 2, 2006"))
}

type digestTemplateData struct {
	Digest    models.Digest
	Recipient string
	Date      string
}

var digestHTML = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background:#f4f4f5;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:600px;margin:0 auto;padding:24px;">
  <div style="background:#1e293b;color:#ffffff;padding:24px;border-radius:8px 8px 0 0;">
    <h1 style="margin:0;font-size:22px;">{{.Digest.Title}}</h1>
    <p style="margin:8px 0 0;color:#cbd5e1;font-size:13px;">{{.Date}}</p>
  </div>
  <div style="background:#ffffff;padding:24px;border-radius:0 0 8px 8px;">
    {{if .Recipient}}<p style="font-size:14px;">Hi {{.Recipient}},</p>{{end}}
    <p style="font-size:14px;line-height:1.6;">{{.Digest.Summary}}</p>

    {{range .Digest.Categories}}
    <h2 style="font-size:16px;color:#1e293b;border-bottom:1px solid #e2e8f0;padding-bottom:4px;text-transform:capitalize;">
      {{.Name}} <span style="color:#94a3b8;font-weight:normal;font-size:13px;">({{.Articles}} articles)</span>
    </h2>
    <ul style="padding-left:20px;font-size:14px;line-height:1.7;">
      {{range .Highlights}}<li>{{.}}</li>{{end}}
    </ul>
    {{end}}

    {{if .Digest.TrendingTopics}}
    <h2 style="font-size:16px;color:#1e293b;">Trending topics</h2>
    <p style="font-size:14px;">
      {{range .Digest.TrendingTopics}}<span style="display:inline-block;background:#e2e8f0;border-radius:12px;padding:2px 10px;margin:2px;font-size:12px;">{{.}}</span>{{end}}
    </p>
    {{end}}

    <p style="font-size:12px;color:#64748b;margin-top:24px;">
      Today's mood: {{.Digest.Sentiment.Positive}}% positive,
      {{.Digest.Sentiment.Neutral}}% neutral,
      {{.Digest.Sentiment.Negative}}% negative.
    </p>
  </div>
  <p style="text-align:center;color:#94a3b8;font-size:11px;margin-top:16px;">
    You receive this digest because of your NewsHub preferences.
  </p>
</div>
</body>
</html>
`))

func renderDigestText(data digestTemplateData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", data.Digest.Title, data.Date)
	if data.Recipient != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", data.Recipient)
	}
	fmt.Fprintf(&b, "%s\n", data.Digest.Summary)

	for _, cat := range data.Digest.Categories {
		fmt.Fprintf(&b, "\n%s (%d articles)\n", strings.ToUpper(cat.Name), cat.Articles)
		for _, h := range cat.Highlights {
			fmt.Fprintf(&b, "  - %s\n", h)
		}
	}

	if len(data.Digest.TrendingTopics) > 0 {
		fmt.Fprintf(&b, "\nTrending: %s\n", strings.Join(data.Digest.TrendingTopics, ", "))
	}

	fmt.Fprintf(&b, "\nToday's mood: %d%% positive, %d%% neutral, %d%% negative.\n",
		data.Digest.Sentiment.Positive,
		data.Digest.Sentiment.Neutral,
		data.Digest.Sentiment.Negative)

	return b.String()
}
