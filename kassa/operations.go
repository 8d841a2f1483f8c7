package kassa

import "context"

// Command type discriminators recognized by the remote service.
const (
	TypeOpenShift           = "openShift"
	TypeCloseShift          = "closeShift"
	TypePrintCheck          = "printCheck"
	TypePrintPurchaseReturn = "printPurchaseReturn"
)

// baseParams assembles the parameters every authenticated call starts from.
func (c *Client) baseParams() map[string]any {
	return map[string]any{
		"app_id": c.appID,
		"nonce":  c.nonce,
		"token":  c.Token(),
	}
}

// GetStateSystem queries the state of the fiscal device.
func (c *Client) GetStateSystem(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "getStateSystem", "StateSystem", c.baseParams())
}

// OpenShift opens a shift on the fiscal device on behalf of author.
func (c *Client) OpenShift(ctx context.Context, author string) (map[string]any, error) {
	return c.postCommand(ctx, "openShift", TypeOpenShift, map[string]any{
		"report_type": "false",
		"author":      author,
	})
}

// CloseShift closes the current shift on behalf of author.
func (c *Client) CloseShift(ctx context.Context, author string) (map[string]any, error) {
	return c.postCommand(ctx, "closeShift", TypeCloseShift, map[string]any{
		"report_type": "false",
		"author":      author,
	})
}

// PrintCheck queues a sale receipt for printing. The command mapping carries
// the receipt contents in the form the remote service expects.
func (c *Client) PrintCheck(ctx context.Context, command map[string]any) (map[string]any, error) {
	return c.postCommand(ctx, "printCheck", TypePrintCheck, command)
}

// PrintPurchaseReturn queues a purchase-return receipt for printing.
func (c *Client) PrintPurchaseReturn(ctx context.Context, command map[string]any) (map[string]any, error) {
	return c.postCommand(ctx, "printPurchaseReturn", TypePrintPurchaseReturn, command)
}

// DataCommandID fetches the result of a previously queued command. Unlike
// the other operations it mints a fresh nonce per call instead of reusing
// the session nonce.
func (c *Client) DataCommandID(ctx context.Context, id string) (map[string]any, error) {
	params := map[string]any{
		"app_id": c.appID,
		"nonce":  newNonce(),
		"token":  c.Token(),
	}
	return c.get(ctx, "dataCommandID", "Command/"+id, params)
}

// postCommand wraps a command sub-mapping with the session parameters and a
// type discriminator, then dispatches it. Operations carry no logic beyond
// parameter assembly.
func (c *Client) postCommand(ctx context.Context, operation, commandType string, command map[string]any) (map[string]any, error) {
	params := c.baseParams()
	params["type"] = commandType
	params["command"] = command
	return c.post(ctx, operation, "Command", params)
}
