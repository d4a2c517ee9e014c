// Package services holds the controllers the CLI views render: the paged
// user list and the create/edit user form. Controllers keep their own state,
// reject overlapping operations and turn API failures into messages.
package services
