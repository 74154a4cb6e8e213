package assets

import (
	_ "embed"
)

//go:generate npx -y @tailwindcss/cli -i css/input.css -o ../public/css/app.css --minify
//go:generate go tool esbuild --minify --format=esm js/_index.js --outfile=../public/_index.js
//go:generate go tool esbuild --minify --format=esm js/counter.js --outfile=../public/js/counter.js

//go:embed robots.txt
var RobotsTxt string
