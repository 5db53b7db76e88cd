package mailer

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

type templateData struct {
	ServiceName string
	Link        string
}

var activationText = texttemplate.Must(texttemplate.New("activation.txt").Parse(`
Your new {{.ServiceName}} account is waiting for you!  Activate it by following
the link below:

{{.Link}}
`))

var activationHTML = htmltemplate.Must(htmltemplate.New("activation.html").Parse(`
<p>Your new <strong>{{.ServiceName}}</strong> account is waiting for you!
Activate it by following the link below:</p>
<p><b><a href="{{.Link}}">Activate Now</a></b></p>
`))

var passwordResetText = texttemplate.Must(texttemplate.New("password_reset.txt").Parse(`
Reset your password by following the link below:

{{.Link}}
`))

var passwordResetHTML = htmltemplate.Must(htmltemplate.New("password_reset.html").Parse(`
<p>Reset your password by following the link below:</p>
<p>
  <b><a href="{{.Link}}">Reset Password</a></b>
</p>
`))
