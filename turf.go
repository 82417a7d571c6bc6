// Package turf compiles SCSS and CSS stylesheets into scoped CSS.
//
// Every class selector in a stylesheet is rewritten to a generated name
// built from the configured template, so styles of different components
// cannot collide. The result carries the compiled CSS, the mapping from
// original to generated class names and the files the stylesheet was built
// from.
//
// # Processing
//
// Process uses the settings of the project's turf.yaml:
//
//	res, err := turf.Process(turf.File("web/button.scss"))
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.ClassNames["btn"]) // class-k3n1w2
//
// Stylesheets may also be given inline:
//
//	res, err := turf.Process(turf.Inline(".card { padding: 1rem; }"))
//
// # Settings
//
// The manifest declares a production profile (turf) and an optional
// development profile (turf-dev). Builds tagged turfrelease only ever use
// the production profile.
//
// # CLI Tool
//
// The turf command generates Go code from stylesheets:
//
//	go install github.com/yacobolo/turf/cmd/turf@latest
//	//go:generate turf generate
package turf
