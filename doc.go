/*
Package sites-sync copies the site list kept in the 'Meta' worksheet of a Google Sheets spreadsheet into a
'sites' database table, upserting one row per site name.

sites-sync can be used from the command line but is really intended to be run from a cron job to keep the table
in step with the worksheet.

sites-sync supports the following commands:

  - sync, to upsert every worksheet row into the sites table
  - get, to download the mapped worksheet rows as a TSV file
  - compare, to list the sites a sync would add or update
  - serve, to run a form for sending daily work status messages to a Telegram chat
  - version, to display the current version
*/
package sitesync
