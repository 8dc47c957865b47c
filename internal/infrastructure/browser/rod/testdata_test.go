package rod

const (
	basicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title><script>var hidden = "script text";</script></head>
<body>
	<h1>Hello   World</h1>
	<div class="MarkdownProse">The answer is 42.</div>
</body>
</html>`

	formHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="testForm" onsubmit="event.preventDefault(); document.getElementById('out').textContent = 'sent:' + document.getElementById('prompt').value;">
		<textarea id="prompt">old draft</textarea>
		<button id="submit" type="submit">Submit</button>
		<button id="disabled" disabled style="display:none">Hidden</button>
	</form>
	<div id="out"></div>
</body>
</html>`

	delayedHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="late" style="display:none">Ready</div>
	<script>setTimeout(function () { document.getElementById('late').style.display = 'block'; }, 200);</script>
</body>
</html>`

	popupHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="open" onclick="window.__popup = window.open('/child', 'child', 'width=400,height=400')">Continue with Google</button>
	<button id="close" onclick="window.__popup && window.__popup.close()">Close</button>
</body>
</html>`

	childHTML = `<!DOCTYPE html>
<html>
<body>
	<input type="email" id="email">
</body>
</html>`
)
