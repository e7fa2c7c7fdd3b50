package models

// EmailMessage is the unit of work handed to the notification worker pool.
type EmailMessage struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}
