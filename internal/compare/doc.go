// Package compare runs several trip planners on the same input and reports
// how many trips each needed and how long each took.
package compare
