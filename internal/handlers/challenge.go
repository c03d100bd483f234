package handlers

import (
	"bytes"
	"html/template"
)

// The interstitial runs its own client-side automation probe before
// navigating. When the probe fails it renders a visible denial and never
// navigates; the destination is only reachable through the script.
const challengeHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex, nofollow">
<title>Redirecting&hellip;</title>
<style>
body { font-family: system-ui, sans-serif; display: flex; align-items: center;
       justify-content: center; min-height: 100vh; margin: 0; }
.card { text-align: center; }
.denied { color: #b00020; display: none; }
</style>
</head>
<body>
<div class="card">
  <p id="wait">Checking your browser&hellip;</p>
  <p id="denied" class="denied">Access denied.</p>
</div>
<script>
(function () {
  var destination = {{.Destination}};
  var automated = navigator.webdriver === true ||
    !('onscroll' in window) ||
    typeof navigator.languages === 'undefined' ||
    navigator.languages.length === 0;
  if (automated) {
    document.getElementById('wait').style.display = 'none';
    document.getElementById('denied').style.display = 'block';
    return;
  }
  setTimeout(function () { window.location.replace(destination); }, 400);
})();
</script>
</body>
</html>
`

var challengeTemplate = template.Must(template.New("challenge").Parse(challengeHTML))

// renderChallengePage renders the interstitial with the destination
// serialized into the probe script.
func renderChallengePage(destination string) ([]byte, error) {
	var buf bytes.Buffer

	err := challengeTemplate.Execute(&buf, struct{ Destination string }{Destination: destination})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
