// Package theme renders the configured element styles into the stylesheet
// applied to notification windows.
package theme
