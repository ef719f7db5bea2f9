package webapi

const controlPage = `<!doctype html>
<html><head><meta name="viewport" content="width=device-width"><title>ledStack</title></head>
<body>
<h1>ledStack</h1>
<form method="post" action="/api/header/text">Header <input name="text" maxlength="127"><button>Set</button></form>
<form method="post" action="/api/header/color">Header colour <input name="color" placeholder="0000FF"><button>Set</button></form>
<form method="post" action="/api/time/color">Time colour <input name="color" placeholder="FFFFFF"><button>Set</button></form>
<form method="post" action="/api/bg/color">Background <input name="color" placeholder="000000"><button>Set</button></form>
<form method="post" action="/api/brightness">Brightness <input name="brightness" type="number" min="0" max="255"><button>Set</button></form>
<form method="post" action="/api/power"><button name="power" value="on">On</button><button name="power" value="off">Off</button></form>
<p><a href="/admin">Admin</a></p>
</body></html>
`

const adminPage = `<!doctype html>
<html><head><meta name="viewport" content="width=device-width"><title>ledStack admin</title></head>
<body>
<h1>Admin</h1>
<form method="post" action="/api/time/sync">Time
<input name="hour" type="number" min="0" max="23">:<input name="minute" type="number" min="0" max="59">:<input name="second" type="number" min="0" max="59">
<button>Sync</button></form>
<form method="post" action="/api/wifi">SSID <input name="ssid" maxlength="32"> Password <input name="password" type="password" maxlength="64"><button>Save</button></form>
<p><a href="/api/status">Status</a> | <a href="/control">Control</a></p>
</body></html>
`
