// Package tailwind renders clinical note forms as server-side HTML using
// Tailwind utility classes. It registers under the name "html".
//
// Every control posts under its dotted answer path; nested group children
// use "group.child". Signed notes render with disabled controls and
// sanitized rich text.
package tailwind
