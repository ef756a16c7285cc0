// Package application manages room provisioning applications: the requests
// users submit describing which rooms and sensors they want, and the
// pending/approved/rejected lifecycle admins drive them through.
package application
