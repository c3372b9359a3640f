package notify

// HTML bodies rendered with text/template from the Invoice snapshot.

const orderConfirmedTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Order #{{.OrderID}} confirmed</h2>
	<p>Hello {{.CustomerName}}, your order has been placed.</p>
	<table border="1" cellpadding="6" cellspacing="0">
		<tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>
		{{range .Lines}}
		<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Total}}</td></tr>
		{{end}}
	</table>
	<p><b>Order total: {{.Total}}</b></p>
</body>
</html>
`

const orderDeliveredTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Order #{{.OrderID}} delivered</h2>
	<p>Hello {{.CustomerName}}, your order has been delivered. Thank you for shopping with us!</p>
</body>
</html>
`

const invoiceReadyBody = "The invoice for the new order is attached."

const activationTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Welcome, {{.FirstName}}!</h2>
	<p>Confirm your account by following the link below. The link is valid for 24 hours.</p>
	<p><a href="{{.Link}}">{{.Link}}</a></p>
	<p>If you did not register, ignore this message.</p>
</body>
</html>
`
